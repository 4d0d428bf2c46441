package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	screenshotQuality            = 90
	screenshotFileNamePattern    = "%s-%s.png"
	screenshotTimestampLayout    = "20060102-150405"
	pageExcerptLimit             = 2000
	bodySelector                 = "body"
	createReportDirErrorMessage  = "create report directory"
	captureScreenshotErrorFormat = "capture screenshot"
	writeScreenshotErrorMessage  = "write screenshot"
	logEventDiagnosticsCaptured  = "diagnostics_captured"
	logFieldScreenshotPath       = "screenshot"
)

// Diagnostics is the postmortem artifact captured on a failed flow:
// a screenshot path under the report directory and a truncated page body.
type Diagnostics struct {
	ScreenshotPath string
	PageExcerpt    string
}

// CaptureDiagnostics writes a full-page screenshot into the report
// directory and extracts a truncated body text. Capture is best effort:
// a screenshot failure does not suppress the text excerpt and vice
// versa, since the diagnostics accompany an error already being raised.
func CaptureDiagnostics(browserContext context.Context, reportDirectory string, artifactLabel string, logger *zap.Logger) (Diagnostics, error) {
	capturedDiagnostics := Diagnostics{}

	if mkdirErr := os.MkdirAll(reportDirectory, 0o755); mkdirErr != nil {
		return capturedDiagnostics, fmt.Errorf("%s: %w", createReportDirErrorMessage, mkdirErr)
	}

	var screenshotBuffer []byte
	screenshotErr := chromedp.Run(browserContext, chromedp.FullScreenshot(&screenshotBuffer, screenshotQuality))
	if screenshotErr == nil {
		screenshotFileName := fmt.Sprintf(screenshotFileNamePattern, artifactLabel, time.Now().Format(screenshotTimestampLayout))
		screenshotPath := filepath.Join(reportDirectory, screenshotFileName)
		if writeErr := os.WriteFile(screenshotPath, screenshotBuffer, 0o644); writeErr != nil {
			return capturedDiagnostics, fmt.Errorf("%s: %w", writeScreenshotErrorMessage, writeErr)
		}
		capturedDiagnostics.ScreenshotPath = screenshotPath
		logger.Info(logEventDiagnosticsCaptured, zap.String(logFieldScreenshotPath, screenshotPath))
	}

	var pageBodyText string
	textErr := chromedp.Run(browserContext, chromedp.Text(bodySelector, &pageBodyText, chromedp.ByQuery))
	if textErr == nil {
		capturedDiagnostics.PageExcerpt = truncateExcerpt(pageBodyText, pageExcerptLimit)
	}

	if screenshotErr != nil && textErr != nil {
		return capturedDiagnostics, fmt.Errorf("%s: %w", captureScreenshotErrorFormat, screenshotErr)
	}

	return capturedDiagnostics, nil
}

func truncateExcerpt(fullText string, limit int) string {
	if len(fullText) <= limit {
		return fullText
	}
	return fullText[:limit]
}
