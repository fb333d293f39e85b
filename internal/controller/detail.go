package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"tms-cli/internal/api"
	"tms-cli/internal/logging"
	"tms-cli/internal/validate"
)

type DetailState int

const (
	DetailLoading DetailState = iota
	DetailLoaded
	DetailNotFound
	DetailError
)

func (s DetailState) String() string {
	switch s {
	case DetailLoading:
		return "loading"
	case DetailLoaded:
		return "loaded"
	case DetailNotFound:
		return "not_found"
	default:
		return "error"
	}
}

type Mode int

const (
	Viewing Mode = iota
	Editing
)

// DetailSource wires a Detail to one kind of entity.
type DetailSource[T, F any] struct {
	// Noun names the entity in messages ("task", "member").
	Noun     string
	Load     func(ctx context.Context) (T, error)
	FormOf   func(T) F
	Validate func(F) validate.Errors
	Update   func(ctx context.Context, f F) error
}

type LoadResult[T any] struct {
	Seq    uint64
	Entity T
	Err    error
}

// Detail is the view state of one entity: load, view, edit and submit.
type Detail[T, F any] struct {
	src    DetailSource[T, F]
	logger *slog.Logger

	mu         sync.Mutex
	seq        uint64
	state      DetailState
	mode       Mode
	entity     T
	form       F
	fieldErrs  validate.Errors
	err        error
	message    string
	submitting bool
}

func NewDetail[T, F any](src DetailSource[T, F], logger *slog.Logger) *Detail[T, F] {
	return &Detail[T, F]{src: src, logger: logging.OrDiscard(logger), state: DetailLoading}
}

// BeginLoad marks the detail as loading and returns the load's sequence number.
func (d *Detail[T, F]) BeginLoad() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.state = DetailLoading
	return d.seq
}

func (d *Detail[T, F]) FetchLoad(ctx context.Context, seq uint64) LoadResult[T] {
	e, err := d.src.Load(ctx)
	return LoadResult[T]{Seq: seq, Entity: e, Err: err}
}

// ApplyLoad stores res unless a newer load has been issued since. An open
// edit keeps its form values.
func (d *Detail[T, F]) ApplyLoad(res LoadResult[T]) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res.Seq != d.seq {
		d.logger.Debug("dropping superseded "+d.src.Noun+" load", slog.Uint64("seq", res.Seq), slog.Uint64("latest", d.seq))
		return false
	}
	if res.Err != nil {
		var zero T
		d.entity = zero
		d.err = res.Err
		d.mode = Viewing
		if api.IsNotFound(res.Err) {
			d.state = DetailNotFound
			d.message = capitalize(d.src.Noun) + " not found"
			return true
		}
		d.logger.Error("failed to load "+d.src.Noun, slog.String("error", res.Err.Error()))
		d.state = DetailError
		d.message = "Failed to load " + d.src.Noun
		return true
	}
	d.entity = res.Entity
	if d.mode != Editing {
		d.form = d.src.FormOf(res.Entity)
		d.fieldErrs = nil
	}
	d.err = nil
	d.message = ""
	d.state = DetailLoaded
	return true
}

// Load fetches the entity synchronously.
func (d *Detail[T, F]) Load(ctx context.Context) error {
	res := d.FetchLoad(ctx, d.BeginLoad())
	if !d.ApplyLoad(res) {
		return nil
	}
	return res.Err
}

// Edit switches to edit mode. No network.
func (d *Detail[T, F]) Edit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DetailLoaded {
		return false
	}
	d.mode = Editing
	d.message = ""
	return true
}

// Cancel leaves edit mode and restores the form from the loaded entity.
func (d *Detail[T, F]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = Viewing
	d.form = d.src.FormOf(d.entity)
	d.fieldErrs = nil
	d.message = ""
}

// Submit validates f, sends the update and reloads. Field errors are
// returned as validate.Errors without contacting the server.
func (d *Detail[T, F]) Submit(ctx context.Context, f F) error {
	d.mu.Lock()
	if d.mode != Editing {
		d.mu.Unlock()
		return ErrNotEditing
	}
	if d.submitting {
		d.mu.Unlock()
		return ErrBusy
	}
	d.form = f
	if errs := d.src.Validate(f); len(errs) > 0 {
		d.fieldErrs = errs
		d.mu.Unlock()
		return errs
	}
	d.fieldErrs = nil
	d.message = ""
	d.submitting = true
	d.mu.Unlock()

	err := d.src.Update(ctx, f)

	d.mu.Lock()
	d.submitting = false
	if err != nil {
		d.message = failureMessage(err, "Failed to update "+d.src.Noun)
		d.mu.Unlock()
		return err
	}
	d.mode = Viewing
	d.mu.Unlock()

	return d.Load(ctx)
}

// SetMessage shows an inline error on the detail screen.
func (d *Detail[T, F]) SetMessage(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.message = msg
}

func (d *Detail[T, F]) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detail[T, F]) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *Detail[T, F]) Entity() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entity
}

// Form returns the values shown in the edit form.
func (d *Detail[T, F]) Form() F {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

func (d *Detail[T, F]) FieldErrors() validate.Errors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fieldErrs
}

// Message is the inline error for the screen, if any.
func (d *Detail[T, F]) Message() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.message
}

func (d *Detail[T, F]) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Detail[T, F]) Submitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitting
}

func failureMessage(err error, fallback string) string {
	if msg := api.Message(err); msg != "" {
		return msg
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
