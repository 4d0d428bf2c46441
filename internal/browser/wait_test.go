package browser

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"
)

func TestPollVisibleReportsCanceledSessionContext(t *testing.T) {
	sessionContext, cancelSession := context.WithCancel(context.Background())
	cancelSession()

	elementVisible, pollErr := PollVisible(sessionContext, "#wpadminbar", time.Second)
	require.False(t, elementVisible)
	require.ErrorIs(t, pollErr, context.Canceled)
}

func TestPollVisibleReportsExpiredSessionContext(t *testing.T) {
	sessionContext, cancelSession := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancelSession()
	<-sessionContext.Done()

	elementVisible, pollErr := PollVisible(sessionContext, "#wpadminbar", time.Second)
	require.False(t, elementVisible)
	require.ErrorIs(t, pollErr, context.DeadlineExceeded)
}

func TestPollVisibleWrapsEvaluateFailure(t *testing.T) {
	elementVisible, pollErr := PollVisible(context.Background(), "#wpadminbar", time.Second)
	require.False(t, elementVisible)
	require.Error(t, pollErr)
	require.Contains(t, pollErr.Error(), visibilityPollErrorMessage)
}

func TestNetworkActivityTrackerCountsInflightRequests(t *testing.T) {
	activityTracker := newNetworkActivityTracker()
	require.True(t, activityTracker.quietFor(0))

	activityTracker.handleEvent(&network.EventRequestWillBeSent{RequestID: network.RequestID("request-1")})
	require.False(t, activityTracker.quietFor(0))

	activityTracker.handleEvent(&network.EventLoadingFinished{RequestID: network.RequestID("request-1")})
	require.True(t, activityTracker.quietFor(0))
	require.False(t, activityTracker.quietFor(time.Hour))
}

func TestNetworkActivityTrackerClearsFailedRequests(t *testing.T) {
	activityTracker := newNetworkActivityTracker()

	activityTracker.handleEvent(&network.EventRequestWillBeSent{RequestID: network.RequestID("request-1")})
	activityTracker.handleEvent(&network.EventLoadingFailed{RequestID: network.RequestID("request-1")})
	require.True(t, activityTracker.quietFor(0))
}

func TestAwaitQuietWindowTimesOutWhileRequestInflight(t *testing.T) {
	activityTracker := newNetworkActivityTracker()
	activityTracker.handleEvent(&network.EventRequestWillBeSent{RequestID: network.RequestID("request-1")})

	waitErr := awaitQuietWindow(context.Background(), activityTracker, 10*time.Millisecond, 100*time.Millisecond)
	require.ErrorIs(t, waitErr, context.DeadlineExceeded)
}

func TestAwaitQuietWindowReturnsOnceQuiet(t *testing.T) {
	activityTracker := newNetworkActivityTracker()

	require.NoError(t, awaitQuietWindow(context.Background(), activityTracker, 0, time.Second))
}
