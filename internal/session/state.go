package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

const (
	captureCookiesErrorMessage   = "capture cookies"
	captureStorageErrorMessage   = "capture local storage"
	captureOriginErrorMessage    = "resolve page origin"
	persistStateErrorMessage     = "persist session state"
	loadStateErrorMessage        = "load session state"
	restoreCookiesErrorMessage   = "restore cookies"
	restoreStorageErrorMessage   = "restore local storage"
	stateFilePermissions         = 0o600
	stateDirectoryPermissions    = 0o755
	currentOriginScript          = `window.location.origin`
	collectLocalStorageScript    = `(function(){
		var entries = [];
		for (var index = 0; index < localStorage.length; index++) {
			var entryName = localStorage.key(index);
			entries.push({name: entryName, value: localStorage.getItem(entryName)});
		}
		return entries;
	})()`
	seedLocalStorageScriptFormat = `(function(entries){
		entries.forEach(function(entry){ localStorage.setItem(entry.name, entry.value); });
	})(%s)`
)

// StorageEntry is one key/value pair of an origin's localStorage.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Cookie is the persisted form of one browser cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// OriginState is the localStorage snapshot of a single origin.
type OriginState struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// State is the serialized snapshot of an authenticated browser context.
// It is captured once per run by the bootstrap, written to the
// configured artifact path, and read-only afterwards.
type State struct {
	Cookies    []Cookie      `json:"cookies"`
	Origins    []OriginState `json:"origins"`
	CapturedAt time.Time     `json:"capturedAt"`
}

// CaptureState snapshots all cookies plus the current page origin's
// localStorage from a live browser session.
func CaptureState(browserContext context.Context) (State, error) {
	capturedState := State{CapturedAt: time.Now().UTC()}

	var browserCookies []*network.Cookie
	cookiesAction := chromedp.ActionFunc(func(actionContext context.Context) error {
		fetchedCookies, fetchErr := storage.GetCookies().Do(actionContext)
		if fetchErr != nil {
			return fetchErr
		}
		browserCookies = fetchedCookies
		return nil
	})
	if runErr := chromedp.Run(browserContext, cookiesAction); runErr != nil {
		return State{}, fmt.Errorf("%s: %w", captureCookiesErrorMessage, runErr)
	}

	for _, browserCookie := range browserCookies {
		capturedState.Cookies = append(capturedState.Cookies, Cookie{
			Name:     browserCookie.Name,
			Value:    browserCookie.Value,
			Domain:   browserCookie.Domain,
			Path:     browserCookie.Path,
			Expires:  browserCookie.Expires,
			HTTPOnly: browserCookie.HTTPOnly,
			Secure:   browserCookie.Secure,
			SameSite: string(browserCookie.SameSite),
		})
	}

	var pageOrigin string
	if originErr := chromedp.Run(browserContext, chromedp.Evaluate(currentOriginScript, &pageOrigin)); originErr != nil {
		return State{}, fmt.Errorf("%s: %w", captureOriginErrorMessage, originErr)
	}

	var localStorageEntries []StorageEntry
	if storageErr := chromedp.Run(browserContext, chromedp.Evaluate(collectLocalStorageScript, &localStorageEntries)); storageErr != nil {
		return State{}, fmt.Errorf("%s: %w", captureStorageErrorMessage, storageErr)
	}

	capturedState.Origins = append(capturedState.Origins, OriginState{
		Origin:       pageOrigin,
		LocalStorage: localStorageEntries,
	})

	return capturedState, nil
}

// Persist writes the state as JSON to the artifact path, creating the
// parent directory when needed. The previous run's artifact is
// overwritten.
func (persistedState State) Persist(statePath string) error {
	if mkdirErr := os.MkdirAll(filepath.Dir(statePath), stateDirectoryPermissions); mkdirErr != nil {
		return fmt.Errorf("%s: %w", persistStateErrorMessage, mkdirErr)
	}

	encodedState, marshalErr := json.MarshalIndent(persistedState, "", "  ")
	if marshalErr != nil {
		return fmt.Errorf("%s: %w", persistStateErrorMessage, marshalErr)
	}

	if writeErr := os.WriteFile(statePath, encodedState, stateFilePermissions); writeErr != nil {
		return fmt.Errorf("%s: %w", persistStateErrorMessage, writeErr)
	}

	return nil
}

// LoadState reads a previously persisted state artifact.
func LoadState(statePath string) (State, error) {
	encodedState, readErr := os.ReadFile(statePath)
	if readErr != nil {
		return State{}, fmt.Errorf("%s: %w", loadStateErrorMessage, readErr)
	}

	var loadedState State
	if unmarshalErr := json.Unmarshal(encodedState, &loadedState); unmarshalErr != nil {
		return State{}, fmt.Errorf("%s: %w", loadStateErrorMessage, unmarshalErr)
	}

	return loadedState, nil
}

// RestoreState seeds a fresh browser session with a captured state:
// cookies first, then each origin's localStorage after navigating to
// that origin.
func RestoreState(browserContext context.Context, restoredState State) error {
	cookieParams := make([]*network.CookieParam, 0, len(restoredState.Cookies))
	for _, persistedCookie := range restoredState.Cookies {
		cookieParam := &network.CookieParam{
			Name:     persistedCookie.Name,
			Value:    persistedCookie.Value,
			Domain:   persistedCookie.Domain,
			Path:     persistedCookie.Path,
			HTTPOnly: persistedCookie.HTTPOnly,
			Secure:   persistedCookie.Secure,
		}
		if persistedCookie.SameSite != "" {
			cookieParam.SameSite = network.CookieSameSite(persistedCookie.SameSite)
		}
		if persistedCookie.Expires > 0 {
			expiry := cdp.TimeSinceEpoch(time.Unix(int64(persistedCookie.Expires), 0))
			cookieParam.Expires = &expiry
		}
		cookieParams = append(cookieParams, cookieParam)
	}

	setCookiesAction := chromedp.ActionFunc(func(actionContext context.Context) error {
		return storage.SetCookies(cookieParams).Do(actionContext)
	})
	if runErr := chromedp.Run(browserContext, setCookiesAction); runErr != nil {
		return fmt.Errorf("%s: %w", restoreCookiesErrorMessage, runErr)
	}

	for _, originState := range restoredState.Origins {
		if len(originState.LocalStorage) == 0 {
			continue
		}
		encodedEntries, marshalErr := json.Marshal(originState.LocalStorage)
		if marshalErr != nil {
			return fmt.Errorf("%s: %w", restoreStorageErrorMessage, marshalErr)
		}
		seedScript := fmt.Sprintf(seedLocalStorageScriptFormat, string(encodedEntries))
		seedActions := []chromedp.Action{
			chromedp.Navigate(originState.Origin),
			chromedp.Evaluate(seedScript, nil),
		}
		if runErr := chromedp.Run(browserContext, seedActions...); runErr != nil {
			return fmt.Errorf("%s: %w", restoreStorageErrorMessage, runErr)
		}
	}

	return nil
}
