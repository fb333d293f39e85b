package controller

import (
	"context"
	"log/slog"
	"sync"

	"tms-cli/internal/logging"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/validate"
)

// Create is a new-entity form: validate, one create call, then back to the list.
type Create[F any] struct {
	noun     string
	validate func(F) validate.Errors
	create   func(ctx context.Context, f F) (int64, error)
	nav      route.Navigator
	list     route.Route
	logger   *slog.Logger

	mu         sync.Mutex
	form       F
	fieldErrs  validate.Errors
	message    string
	submitting bool
	createdID  int64
}

func NewCreate[F any](noun string, initial F, check func(F) validate.Errors, create func(ctx context.Context, f F) (int64, error), nav route.Navigator, list route.Route, logger *slog.Logger) *Create[F] {
	if nav == nil {
		nav = route.Nowhere
	}
	return &Create[F]{
		noun:     noun,
		validate: check,
		create:   create,
		nav:      nav,
		list:     list,
		logger:   logging.OrDiscard(logger),
		form:     initial,
	}
}

func NewTaskCreate(client TaskAPI, nav route.Navigator, logger *slog.Logger) *Create[validate.TaskForm] {
	return NewCreate("task", validate.NewTaskForm(), validate.Task,
		func(ctx context.Context, f validate.TaskForm) (int64, error) {
			t, err := client.CreateTask(ctx, f.CreateRequest())
			return t.ID, err
		}, nav, route.To(route.Tasks), logger)
}

func NewMemberCreate(client MemberAPI, nav route.Navigator, logger *slog.Logger) *Create[model.CreateMemberRequest] {
	return NewCreate("member", model.CreateMemberRequest{RoleName: model.RoleUser}, validate.MemberCreate,
		func(ctx context.Context, f model.CreateMemberRequest) (int64, error) {
			m, err := client.CreateMember(ctx, f)
			return m.ID, err
		}, nav, route.To(route.Members), logger)
}

// Submit validates f and, when it passes, issues exactly one create call.
func (c *Create[F]) Submit(ctx context.Context, f F) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.form = f
	if errs := c.validate(f); len(errs) > 0 {
		c.fieldErrs = errs
		c.mu.Unlock()
		return errs
	}
	c.fieldErrs = nil
	c.message = ""
	c.submitting = true
	c.mu.Unlock()

	id, err := c.create(ctx, f)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.message = failureMessage(err, "Failed to create "+c.noun)
		c.mu.Unlock()
		c.logger.Debug("create "+c.noun+" failed", slog.String("error", err.Error()))
		return err
	}
	c.createdID = id
	c.mu.Unlock()

	c.logger.Info("created "+c.noun, slog.Int64("id", id))
	c.nav.Navigate(c.list)
	return nil
}

func (c *Create[F]) Form() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Create[F]) FieldErrors() validate.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErrs
}

func (c *Create[F]) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Create[F]) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// CreatedID is the id of the entity from the last successful submit.
func (c *Create[F]) CreatedID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createdID
}
