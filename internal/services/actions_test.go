package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

func newTestActionRouter(store storage.Store) *ActionRouter {
	c := cache.NewNoop()
	return NewActionRouter(
		NewLeaveService(store, c),
		NewPayrollService(store, c),
		NewTrainingService(store, c),
	)
}

func TestRouteUnknownAction(t *testing.T) {
	router := newTestActionRouter(storage.NewMemoryStore())

	result, err := router.Route(context.Background(), "u1", "reboot_universe", nil)

	require.NoError(t, err)
	assert.Equal(t, "Action non reconnue. Comment puis-je vous aider ?", result.Message)
}

func TestRouteViewLeaves(t *testing.T) {
	router := newTestActionRouter(storage.NewMemoryStore())

	result, err := router.Route(context.Background(), "u1", ActionViewLeaves, nil)

	require.NoError(t, err)
	assert.Contains(t, result.Message, "Congés payés : 25 jours")
	assert.Contains(t, result.Message, "RTT : 12 jours")
	require.NotNil(t, result.Result)
}

func TestRouteRequestLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("without params returns the form", func(t *testing.T) {
		router := newTestActionRouter(storage.NewMemoryStore())

		result, err := router.Route(ctx, "u1", ActionRequestLeave, nil)
		require.NoError(t, err)
		assert.Contains(t, result.Message, "Type de congé")

		result, err = router.Route(ctx, "u1", ActionRequestLeave, map[string]interface{}{})
		require.NoError(t, err)
		assert.Contains(t, result.Message, "Type de congé")
	})

	t.Run("creates the request", func(t *testing.T) {
		store := storage.NewMemoryStore()
		router := newTestActionRouter(store)

		result, err := router.Route(ctx, "u1", ActionRequestLeave, map[string]interface{}{
			"type":      models.LeavePaid,
			"startDate": "2026-08-03",
			"endDate":   "2026-08-07",
			"reason":    "vacances d'été",
		})

		require.NoError(t, err)
		assert.Contains(t, result.Message, "Demande de congés créée")
		assert.Contains(t, result.Message, "5 jour(s)")

		requests, err := store.GetLeaveRequestsByUser("u1", 0)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, models.LeavePending, requests[0].Status)
	})

	t.Run("malformed dates are rejected", func(t *testing.T) {
		router := newTestActionRouter(storage.NewMemoryStore())

		_, err := router.Route(ctx, "u1", ActionRequestLeave, map[string]interface{}{
			"type":      models.LeavePaid,
			"startDate": "03/08/2026",
			"endDate":   "07/08/2026",
		})

		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
	})
}

func TestRoutePayslips(t *testing.T) {
	ctx := context.Background()

	t.Run("view lists the history", func(t *testing.T) {
		router := newTestActionRouter(storage.NewMemoryStore())

		// First call generates the sample history
		result, err := router.Route(ctx, "u1", ActionViewPayslip, nil)

		require.NoError(t, err)
		assert.Contains(t, result.Message, "bulletins de paie")
		assert.Contains(t, result.Message, "€ net")
	})

	t.Run("download produces a link", func(t *testing.T) {
		store := storage.NewMemoryStore()
		router := newTestActionRouter(store)

		// Viewing first seeds the sample history
		_, err := router.Route(ctx, "u1", ActionViewPayslip, nil)
		require.NoError(t, err)

		payslips, err := store.GetUserPayslips("u1", 1)
		require.NoError(t, err)
		require.NotEmpty(t, payslips)

		result, err := router.Route(ctx, "u1", ActionDownloadPayslip, map[string]interface{}{
			"payslipId": payslips[0].ID,
		})

		require.NoError(t, err)
		assert.Contains(t, result.Message, "Bulletin de paie prêt")
	})
}

func TestRouteTrainings(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.CreateTraining(&models.Training{
		Title:          "Anglais professionnel",
		Category:       "Langues",
		Duration:       "20h",
		AvailableSpots: 2,
		Recommended:    true,
		IsActive:       true,
		StartDate:      time.Now().AddDate(0, 1, 0),
	}))
	require.NoError(t, store.CreateTraining(&models.Training{
		Title:          "Gestion du stress",
		Category:       "Bien-être",
		Duration:       "1 jour",
		AvailableSpots: 0,
		IsActive:       true,
		StartDate:      time.Now().AddDate(0, 1, 0),
	}))
	router := newTestActionRouter(store)

	t.Run("view shows recommended trainings", func(t *testing.T) {
		result, err := router.Route(ctx, "u1", ActionViewTrainings, nil)

		require.NoError(t, err)
		assert.Contains(t, result.Message, "Anglais professionnel")
		assert.NotContains(t, result.Message, "Gestion du stress")
	})

	t.Run("enroll without target asks for one", func(t *testing.T) {
		result, err := router.Route(ctx, "u1", ActionEnrollTraining, nil)

		require.NoError(t, err)
		assert.Contains(t, result.Message, "Précisez la formation")
	})

	t.Run("enroll confirms when spots remain", func(t *testing.T) {
		trainings, err := store.GetActiveTrainings()
		require.NoError(t, err)
		var withSpots, full string
		for _, tr := range trainings {
			if tr.AvailableSpots > 0 {
				withSpots = tr.ID
			} else {
				full = tr.ID
			}
		}

		result, err := router.Route(ctx, "u1", ActionEnrollTraining, map[string]interface{}{"trainingId": withSpots})
		require.NoError(t, err)
		assert.Contains(t, result.Message, "Inscription confirmée")

		result, err = router.Route(ctx, "u1", ActionEnrollTraining, map[string]interface{}{"trainingId": full})
		require.NoError(t, err)
		assert.Contains(t, result.Message, "liste d'attente")
	})
}
