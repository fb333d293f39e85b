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

// MemberDetail adds the confirmed delete flow to a member's Detail.
type MemberDetail struct {
	*Detail[model.Member, validate.MemberForm]

	id      int64
	members MemberAPI
	nav     route.Navigator
	logger  *slog.Logger

	delMu      sync.Mutex
	confirming bool
	deleting   bool
}

func NewMemberDetail(id int64, members MemberAPI, nav route.Navigator, logger *slog.Logger) *MemberDetail {
	if nav == nil {
		nav = route.Nowhere
	}
	md := &MemberDetail{id: id, members: members, nav: nav, logger: logging.OrDiscard(logger)}
	md.Detail = NewDetail(DetailSource[model.Member, validate.MemberForm]{
		Noun: "member",
		Load: func(ctx context.Context) (model.Member, error) {
			return members.GetMember(ctx, id)
		},
		FormOf:   validate.MemberFormFrom,
		Validate: validate.Member,
		Update: func(ctx context.Context, f validate.MemberForm) error {
			_, err := members.UpdateMember(ctx, id, f.UpdateRequest())
			return err
		},
	}, logger)
	return md
}

func (md *MemberDetail) ID() int64 { return md.id }

// RequestDelete opens the confirmation.
func (md *MemberDetail) RequestDelete() {
	md.delMu.Lock()
	defer md.delMu.Unlock()
	md.confirming = true
}

func (md *MemberDetail) CancelDelete() {
	md.delMu.Lock()
	defer md.delMu.Unlock()
	md.confirming = false
}

func (md *MemberDetail) Confirming() bool {
	md.delMu.Lock()
	defer md.delMu.Unlock()
	return md.confirming
}

// ConfirmDelete deletes the member and navigates to the member list. On
// failure the confirmation closes and the error is shown inline.
func (md *MemberDetail) ConfirmDelete(ctx context.Context) error {
	md.delMu.Lock()
	if md.deleting {
		md.delMu.Unlock()
		return ErrBusy
	}
	md.deleting = true
	md.delMu.Unlock()

	err := md.members.DeleteMember(ctx, md.id)

	md.delMu.Lock()
	md.deleting = false
	md.confirming = false
	md.delMu.Unlock()

	if err != nil {
		md.logger.Warn("delete member failed", slog.Int64("member_id", md.id), slog.String("error", err.Error()))
		md.SetMessage(failureMessage(err, "Failed to delete member"))
		return err
	}
	md.nav.Navigate(route.To(route.Members))
	return nil
}
