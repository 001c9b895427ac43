package providers

import (
	"github.com/samber/do/v2"

	"github.com/habitoapp/habito-server/internal/auth"
	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/logger"
	"github.com/habitoapp/habito-server/internal/service"
	"github.com/habitoapp/habito-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCalendar provides the per-user day resolver.
func ProvideCalendar(i do.Injector) (*service.Calendar, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewCalendar(storeHandle.Store, cfg.Location(), nil), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	kvHandle := do.MustInvoke[*KVHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(kvHandle.Store, storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		storeHandle.Store,
		kvHandle.Store,
		tokenService,
		sessionService,
		service.LogNotifier{Logger: log.Logger},
		v,
		service.AuthConfig{
			DefaultTimezone: cfg.App.DefaultTimezone,
			ResetTTL:        cfg.Auth.PasswordResetDuration,
		},
		log.Logger,
	), nil
}

// ProvideProfileService provides the account service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, sessionService, indexHandle.Index, publisher, v, log.Logger), nil
}

// ProvideHabitService provides the habit service.
func ProvideHabitService(i do.Injector) (*service.HabitService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	recorder := do.MustInvoke[*RecorderHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHabitService(storeHandle.Store, indexHandle.Index, publisher, recorder.Recorder, v, nil, log.Logger), nil
}

// ProvideGoalService provides the goal service.
func ProvideGoalService(i do.Injector) (*service.GoalService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGoalService(storeHandle.Store, indexHandle.Index, v, nil, log.Logger), nil
}

// ProvideCheckService provides the daily check service.
func ProvideCheckService(i do.Injector) (*service.CheckService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	calendar := do.MustInvoke[*service.Calendar](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	recorder := do.MustInvoke[*RecorderHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCheckService(storeHandle.Store, calendar, publisher, recorder.Recorder, log.Logger), nil
}

// ProvideNoteService provides the daily note service.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	calendar := do.MustInvoke[*service.Calendar](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNoteService(storeHandle.Store, calendar, indexHandle.Index, publisher, log.Logger), nil
}

// ProvideProgressService provides streaks, consistency, balance, month
// and heatmap views.
func ProvideProgressService(i do.Injector) (*service.ProgressService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	calendar := do.MustInvoke[*service.Calendar](i)
	recorder := do.MustInvoke[*RecorderHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressService(storeHandle.Store, storeHandle.Store, storeHandle.Store, calendar, recorder.Recorder, log.Logger), nil
}
