package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

// openZoho returns a connected Zoho session holding n leads.
func openZoho(t *testing.T, n int) (*usecase.SyncSession, *MockLeadSource, *recorder) {
	t.Helper()
	src := newMockSource(entity.ProviderZoho)
	src.On("CheckConnection", mock.Anything).Return(true, nil)
	src.On("FetchLeads", mock.Anything).Return(zohoLeads(n), nil).Once()

	rec := &recorder{}
	s := usecase.NewSyncSession("s-1", "acc-1", src, nil, rec)
	state := s.Open(context.Background())
	require.Equal(t, entity.StatusConnected, state.Status)
	require.Equal(t, n, state.LeadCount)
	rec.reset()
	return s, src, rec
}

func TestOpenConnectedLoadsLeads(t *testing.T) {
	src := newMockSource(entity.ProviderZoho)
	src.On("CheckConnection", mock.Anything).Return(true, nil)
	src.On("FetchLeads", mock.Anything).Return(zohoLeads(12), nil)
	rec := &recorder{}

	s := usecase.NewSyncSession("s-1", "acc-1", src, nil, rec)
	state := s.Open(context.Background())

	assert.Equal(t, entity.StatusConnected, state.Status)
	assert.Equal(t, 12, state.LeadCount)
	assert.Len(t, state.View.Items, 10)
	assert.Equal(t, 2, state.View.PageCount)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, entity.OpFetch, rec.last().Operation)
	assert.True(t, rec.last().Success)
}

func TestOpenDisconnectedDoesNotFetch(t *testing.T) {
	src := newMockSource(entity.ProviderHubSpot)
	src.On("CheckConnection", mock.Anything).Return(false, fmt.Errorf("%w: status 500", entity.ErrProviderRejected))
	rec := &recorder{}

	s := usecase.NewSyncSession("s-1", "acc-1", src, nil, rec)
	state := s.Open(context.Background())

	assert.Equal(t, entity.StatusDisconnected, state.Status)
	assert.Equal(t, 0, state.LeadCount)
	src.AssertNotCalled(t, "FetchLeads", mock.Anything)
	assert.Empty(t, rec.all())
}

func TestFetchRequiresConnection(t *testing.T) {
	src := newMockSource(entity.ProviderZoho)
	src.On("CheckConnection", mock.Anything).Return(false, nil)
	rec := &recorder{}
	s := usecase.NewSyncSession("s-1", "acc-1", src, nil, rec)
	s.Open(context.Background())

	_, err := s.Fetch(context.Background(), usecase.FetchOptions{})
	assert.Equal(t, usecase.CodeNotConnected, usecase.ErrorCode(err))
	src.AssertNotCalled(t, "FetchLeads", mock.Anything)
	require.Len(t, rec.all(), 1)
	assert.False(t, rec.last().Success)
}

func TestFetchFailureEmptiesCollection(t *testing.T) {
	s, src, rec := openZoho(t, 12)
	src.On("FetchLeads", mock.Anything).Return(nil, fmt.Errorf("%w: status 502", entity.ErrProviderRejected))

	_, err := s.Fetch(context.Background(), usecase.FetchOptions{})

	assert.Equal(t, usecase.CodeFetchFailed, usecase.ErrorCode(err))
	assert.Equal(t, 0, s.State().LeadCount)
	assert.Equal(t, 0, s.View().Total)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, usecase.CodeFetchFailed, rec.last().Code)
}

func TestConnectThenFetchSkipsProbe(t *testing.T) {
	creds := map[string]string{"api_key": "key", "location_id": "loc"}
	src := newMockSource(entity.ProviderGHL)
	src.On("Connect", mock.Anything, creds).Return(usecase.ConnectResult{Connected: true}, nil)
	src.On("FetchLeads", mock.Anything).Return([]entity.Lead{
		entity.NewLead(0, "id", map[string]any{"id": "g1", "firstName": "Ana"}),
	}, nil)
	rec := &recorder{}
	s := usecase.NewSyncSession("s-1", "acc-1", src, nil, rec)

	require.NoError(t, s.Connect(context.Background(), creds))

	state := s.State()
	assert.Equal(t, entity.StatusConnected, state.Status)
	assert.Equal(t, 1, state.LeadCount)
	src.AssertNotCalled(t, "CheckConnection", mock.Anything)

	sent := rec.all()
	require.Len(t, sent, 2)
	assert.Equal(t, entity.OpConnect, sent[0].Operation)
	assert.Equal(t, entity.OpFetch, sent[1].Operation)
}

func TestDeleteSelected(t *testing.T) {
	s, src, rec := openZoho(t, 12)
	src.On("Delete", mock.Anything, []string{"z0", "z2"}).Return(nil).Once()

	_, err := s.Toggle(0)
	require.NoError(t, err)
	sel, err := s.Toggle(2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, sel)

	pending, err := s.RequestAction(usecase.ActionDelete)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, 2, pending.Count)
	assert.Equal(t, "Delete 2 lead(s)?", pending.Prompt)

	res, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Affected)

	state := s.State()
	assert.Equal(t, 10, state.LeadCount)
	assert.Empty(t, state.Selected)
	assert.Nil(t, state.Pending)
	assert.Equal(t, "z1", state.View.Items[0].Identifier())
	src.AssertExpectations(t)

	require.Len(t, rec.all(), 1)
	assert.Equal(t, entity.OpDelete, rec.last().Operation)
	assert.True(t, rec.last().Success)
	assert.Equal(t, "2 lead(s) deleted", rec.last().Message)
}

func TestDeactivateSelectedHidesLeads(t *testing.T) {
	s, src, _ := openZoho(t, 12)
	src.On("Deactivate", mock.Anything, []string{"z0", "z2"}).Return(nil).Once()

	s.Toggle(0)
	s.Toggle(2)
	_, err := s.RequestAction(usecase.ActionDeactivate)
	require.NoError(t, err)
	_, err = s.Confirm(context.Background())
	require.NoError(t, err)

	state := s.State()
	assert.Equal(t, 12, state.LeadCount)
	assert.Equal(t, 10, state.View.Total)
	assert.Empty(t, state.Selected)
	for _, l := range state.View.Items {
		assert.NotContains(t, []string{"z0", "z2"}, l.Identifier())
	}
}

func TestFailedActionLeavesEverythingInPlace(t *testing.T) {
	s, src, rec := openZoho(t, 12)
	src.On("Deactivate", mock.Anything, []string{"z0", "z2"}).Return(fmt.Errorf("%w: timeout", entity.ErrNetwork))

	s.Toggle(0)
	s.Toggle(2)
	before := s.View()
	_, err := s.RequestAction(usecase.ActionDeactivate)
	require.NoError(t, err)

	_, err = s.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, usecase.CodeActionFailed, usecase.ErrorCode(err))
	assert.True(t, errors.Is(err, entity.ErrNetwork))

	state := s.State()
	assert.Equal(t, before, state.View)
	assert.Equal(t, []int{0, 2}, state.Selected)
	assert.Nil(t, state.Pending)
	require.Len(t, rec.all(), 1)
	assert.False(t, rec.last().Success)
	assert.Equal(t, entity.OpDeactivate, rec.last().Operation)
}

func TestCancelMakesNoRequest(t *testing.T) {
	s, src, rec := openZoho(t, 12)

	s.Toggle(0)
	s.Toggle(2)
	_, err := s.RequestAction(usecase.ActionDelete)
	require.NoError(t, err)
	assert.True(t, s.Cancel())

	state := s.State()
	assert.Nil(t, state.Pending)
	assert.Equal(t, []int{0, 2}, state.Selected)
	assert.Equal(t, 12, state.LeadCount)
	src.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Empty(t, rec.all())

	_, err = s.Confirm(context.Background())
	assert.ErrorIs(t, err, usecase.ErrNoPendingAction)
}

func TestRequestActionRules(t *testing.T) {
	s, _, _ := openZoho(t, 12)

	pending, err := s.RequestAction(usecase.ActionDelete)
	assert.NoError(t, err)
	assert.Nil(t, pending, "nothing selected")

	s.Toggle(1)
	_, err = s.RequestAction(usecase.ActionDelete)
	require.NoError(t, err)
	_, err = s.RequestAction(usecase.ActionDeactivate)
	assert.ErrorIs(t, err, usecase.ErrActionPending)
}

func TestRefetchDropsPendingAction(t *testing.T) {
	s, src, _ := openZoho(t, 12)
	src.On("FetchLeads", mock.Anything).Return(zohoLeads(4), nil)

	s.Toggle(3)
	_, err := s.RequestAction(usecase.ActionDelete)
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), usecase.FetchOptions{})
	require.NoError(t, err)

	state := s.State()
	assert.Nil(t, state.Pending)
	assert.Empty(t, state.Selected)
	_, err = s.Confirm(context.Background())
	assert.ErrorIs(t, err, usecase.ErrNoPendingAction)
	src.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestFilterChangeClearsSelection(t *testing.T) {
	s, _, _ := openZoho(t, 12)

	s.Toggle(0)
	s.Toggle(1)

	page := 1
	s.SetFilter(usecase.FilterUpdate{Page: &page})
	assert.Equal(t, []int{0, 1}, s.State().Selected, "same page keeps the selection")

	query := "lead1"
	v := s.SetFilter(usecase.FilterUpdate{Query: &query})
	assert.Equal(t, 3, v.Total)
	assert.Empty(t, s.State().Selected)
}

func TestSelectAllOnSession(t *testing.T) {
	s, _, _ := openZoho(t, 12)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, s.SelectAll())
	assert.Empty(t, s.SelectAll())

	_, err := s.Toggle(10)
	assert.ErrorIs(t, err, usecase.ErrIndexOutOfView)
}

func TestClosedSessionDiscardsFetch(t *testing.T) {
	src := newMockSource(entity.ProviderZoho)
	rec := &recorder{}
	s := usecase.NewSyncSession("s-1", "acc-1", src, nil, rec)
	src.On("FetchLeads", mock.Anything).Run(func(mock.Arguments) { s.Close() }).Return(zohoLeads(3), nil)

	_, err := s.Fetch(context.Background(), usecase.FetchOptions{SkipConnectionCheck: true})

	assert.ErrorIs(t, err, usecase.ErrSessionClosed)
	assert.True(t, s.Closed())
	assert.Equal(t, 0, s.State().LeadCount)
	assert.Empty(t, rec.all())

	// The in-flight guard was released: a second call is not reported busy.
	_, err = s.Fetch(context.Background(), usecase.FetchOptions{SkipConnectionCheck: true})
	assert.ErrorIs(t, err, usecase.ErrSessionClosed)
	assert.NotErrorIs(t, err, usecase.ErrBusy)
	src.AssertNumberOfCalls(t, "FetchLeads", 2)
}

func TestRegistry(t *testing.T) {
	sources := func(p entity.Provider) (usecase.LeadSource, error) {
		if p != entity.ProviderZoho {
			return nil, fmt.Errorf("no adapter for %s", p)
		}
		src := newMockSource(p)
		src.On("CheckConnection", mock.Anything).Return(false, nil)
		return src, nil
	}
	var notified int
	reg := usecase.NewSessionRegistry(sources, nil, usecase.NotifierFunc(func(context.Context, entity.Notification) {
		notified++
	}))

	s, state, err := reg.Open(context.Background(), "acc-1", entity.ProviderZoho)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), state.ID)
	assert.Equal(t, entity.StatusDisconnected, state.Status)
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	_, _, err = reg.Open(context.Background(), "acc-1", entity.ProviderGHL)
	assert.Error(t, err)
	assert.Equal(t, 1, reg.Len())

	assert.Equal(t, 0, reg.SweepIdle(time.Hour))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, reg.SweepIdle(time.Millisecond))
	assert.True(t, s.Closed())
	assert.Equal(t, 0, reg.Len())

	assert.False(t, reg.Close(s.ID()))
	assert.Equal(t, 0, notified, "probes do not notify")
}
