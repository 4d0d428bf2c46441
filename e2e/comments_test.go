package e2e

import (
	"fmt"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
)

const commentedPostSlug = "release-notes"

func TestSubmittedCommentAppearsInCommentList(t *testing.T) {
	requireSuiteReady(t)

	specSession := newSpecSession(t, config.ViewportDesktop)
	postURL := suiteConfiguration.BaseURL + "/post/" + commentedPostSlug
	navigateAndSettle(t, specSession, postURL)

	requireVisible(t, specSession, "#commentform")
	initialCommentCount := elementCount(t, specSession, ".comment-list .comment")

	commentAuthor := fmt.Sprintf("Visitor %d", initialCommentCount+1)
	commentBody := "The new navigation drawer feels much snappier on mobile."

	require.NoError(t, chromedp.Run(specSession.Context(),
		chromedp.SetValue("#author", commentAuthor, chromedp.ByQuery),
		chromedp.SetValue("#comment", commentBody, chromedp.ByQuery),
	))
	clickAndSettle(t, specSession, "#commentform #submit")

	// The submit redirects back to the permalink with the comment stored.
	require.Contains(t, currentLocation(t, specSession), "/post/"+commentedPostSlug)
	require.Equal(t, initialCommentCount+1, elementCount(t, specSession, ".comment-list .comment"))
	require.Contains(t, elementText(t, specSession, ".comments-title"),
		fmt.Sprintf("%d Comments", initialCommentCount+1))
	require.Contains(t, elementText(t, specSession, ".comment-list"), commentAuthor)
	require.Contains(t, elementText(t, specSession, ".comment-list"), commentBody)
}
