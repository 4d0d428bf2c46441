package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	navigateErrorMessage        = "navigate"
	networkIdleErrorMessage     = "wait for network idle"
	visibilityPollErrorMessage  = "poll element visibility"
	visibilityPollInterval      = 100 * time.Millisecond
	networkIdlePollInterval     = 50 * time.Millisecond
	visibilityPredicateTemplate = `(function(selector){
		var element = document.querySelector(selector);
		if (!element) { return false; }
		var style = window.getComputedStyle(element);
		if (style.display === "none" || style.visibility === "hidden") { return false; }
		var rect = element.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	})(%q)`
)

// networkActivityTracker counts in-flight CDP network requests and
// remembers when the wire last went quiet.
type networkActivityTracker struct {
	mutex            sync.Mutex
	inflightRequests map[network.RequestID]struct{}
	lastActivity     time.Time
}

func newNetworkActivityTracker() *networkActivityTracker {
	return &networkActivityTracker{
		inflightRequests: make(map[network.RequestID]struct{}),
		lastActivity:     time.Now(),
	}
}

func (tracker *networkActivityTracker) handleEvent(event interface{}) {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()

	switch typedEvent := event.(type) {
	case *network.EventRequestWillBeSent:
		tracker.inflightRequests[typedEvent.RequestID] = struct{}{}
		tracker.lastActivity = time.Now()
	case *network.EventLoadingFinished:
		delete(tracker.inflightRequests, typedEvent.RequestID)
		tracker.lastActivity = time.Now()
	case *network.EventLoadingFailed:
		delete(tracker.inflightRequests, typedEvent.RequestID)
		tracker.lastActivity = time.Now()
	}
}

func (tracker *networkActivityTracker) quietFor(quietWindow time.Duration) bool {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()
	return len(tracker.inflightRequests) == 0 && time.Since(tracker.lastActivity) >= quietWindow
}

// NavigateAndSettle navigates to the target URL and waits for network
// activity to settle: no in-flight requests for one full quiet window,
// bounded by the supplied timeout.
func NavigateAndSettle(browserContext context.Context, targetURL string, quietWindow time.Duration, timeout time.Duration) error {
	activityTracker, detachListener := attachNetworkTracker(browserContext)
	defer detachListener()

	if navigateErr := chromedp.Run(browserContext, chromedp.Navigate(targetURL)); navigateErr != nil {
		return fmt.Errorf("%s %s: %w", navigateErrorMessage, targetURL, navigateErr)
	}

	return awaitQuietWindow(browserContext, activityTracker, quietWindow, timeout)
}

// RunAndSettle runs in-page actions (a form submit, a link click) and
// waits for the network activity they trigger to settle. The tracker
// attaches before the actions run so requests issued by the action
// itself are counted in-flight.
func RunAndSettle(browserContext context.Context, quietWindow time.Duration, timeout time.Duration, actions ...chromedp.Action) error {
	activityTracker, detachListener := attachNetworkTracker(browserContext)
	defer detachListener()

	if runErr := chromedp.Run(browserContext, actions...); runErr != nil {
		return runErr
	}

	return awaitQuietWindow(browserContext, activityTracker, quietWindow, timeout)
}

func attachNetworkTracker(browserContext context.Context) (*networkActivityTracker, context.CancelFunc) {
	activityTracker := newNetworkActivityTracker()
	listenerContext, detachListener := context.WithCancel(browserContext)
	chromedp.ListenTarget(listenerContext, activityTracker.handleEvent)
	return activityTracker, detachListener
}

func awaitQuietWindow(browserContext context.Context, activityTracker *networkActivityTracker, quietWindow time.Duration, timeout time.Duration) error {
	deadlineContext, cancelDeadline := context.WithTimeout(browserContext, timeout)
	defer cancelDeadline()

	pollTicker := time.NewTicker(networkIdlePollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-deadlineContext.Done():
			return fmt.Errorf("%s: %w", networkIdleErrorMessage, deadlineContext.Err())
		case <-pollTicker.C:
			if activityTracker.quietFor(quietWindow) {
				return nil
			}
		}
	}
}

// PollVisible repeatedly evaluates a visibility predicate for the
// selector until it reports visible or the timeout elapses. Absence is
// a result, not an error: the bool answers "did it become visible".
// The error is reserved for evaluation failures and for the session
// context dying, so a browser-session timeout propagates to the caller
// instead of masquerading as a missing element.
func PollVisible(browserContext context.Context, cssSelector string, timeout time.Duration) (bool, error) {
	deadlineContext, cancelDeadline := context.WithTimeout(browserContext, timeout)
	defer cancelDeadline()

	visibilityPredicate := fmt.Sprintf(visibilityPredicateTemplate, cssSelector)

	pollTicker := time.NewTicker(visibilityPollInterval)
	defer pollTicker.Stop()

	for {
		var elementVisible bool
		evaluateErr := chromedp.Run(browserContext, chromedp.Evaluate(visibilityPredicate, &elementVisible))
		if evaluateErr != nil {
			if contextErr := browserContext.Err(); contextErr != nil {
				return false, contextErr
			}
			return false, fmt.Errorf("%s %s: %w", visibilityPollErrorMessage, cssSelector, evaluateErr)
		}
		if elementVisible {
			return true, nil
		}

		select {
		case <-deadlineContext.Done():
			// Only the poll's own bound reads as "not visible"; the
			// session context expiring underneath it is an error.
			if contextErr := browserContext.Err(); contextErr != nil {
				return false, contextErr
			}
			return false, nil
		case <-pollTicker.C:
		}
	}
}
