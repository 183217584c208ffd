package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/nick102030/Jolvre-BE/internal/common"
	"github.com/nick102030/Jolvre-BE/internal/server/models"
)

func newInviteService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *InviteService {
	t.Helper()
	return NewInviteService(db, rm, testLogger())
}

func TestCreateGroup_SeedsCreatorMembership(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{groups: &fakeGroupsRepo{}, invites: &fakeInvitesRepo{}}
	svc := newInviteService(t, db, rm)

	groupID, err := svc.CreateGroup(context.Background(), "creator", "collective")
	if err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}
	if rm.groups.created == nil || rm.groups.created.ID != groupID {
		t.Fatalf("group row not written: %+v", rm.groups.created)
	}

	seed := rm.invites.created
	if seed == nil || seed.UserID != "creator" || seed.GroupID != groupID {
		t.Fatalf("creator invite not seeded: %+v", seed)
	}
	if len(rm.invites.decided) != 2 || rm.invites.decided[0] != seed.ID || rm.invites.decided[1] != models.InviteStateAccepted {
		t.Fatalf("creator invite not driven to ACCEPTED: %v", rm.invites.decided)
	}
}

func TestCreateGroup_EmptyName(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	svc := newInviteService(t, db, &fakeRepoManager{})
	_, err := svc.CreateGroup(context.Background(), "creator", "")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
}

func TestInvite_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		groups:  &fakeGroupsRepo{getOut: &models.GroupExhibit{ID: "g-1"}},
		invites: &fakeInvitesRepo{hasAccepted: true},
	}
	svc := newInviteService(t, db, rm)

	id, err := svc.Invite(context.Background(), "member", "newcomer", "g-1")
	if err != nil {
		t.Fatalf("Invite error: %v", err)
	}
	inv := rm.invites.created
	if inv == nil || inv.ID != id {
		t.Fatalf("invite row not written: %+v", inv)
	}
	if inv.UserID != "newcomer" || inv.InviterID != "member" || inv.GroupID != "g-1" {
		t.Fatalf("unexpected invite row: %+v", inv)
	}
}

func TestInvite_InviterNotMember(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		groups:  &fakeGroupsRepo{getOut: &models.GroupExhibit{ID: "g-1"}},
		invites: &fakeInvitesRepo{hasAccepted: false},
	}
	svc := newInviteService(t, db, rm)

	_, err := svc.Invite(context.Background(), "outsider", "newcomer", "g-1")
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("want ErrorForbidden, got %v", err)
	}
	if rm.invites.created != nil {
		t.Fatal("no invite may be written")
	}
}

func TestInvite_GroupNotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{groups: &fakeGroupsRepo{getErr: common.ErrorNotFound}}
	svc := newInviteService(t, db, rm)

	_, err := svc.Invite(context.Background(), "member", "newcomer", "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestInvite_DuplicateActiveInvite(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		groups:  &fakeGroupsRepo{getOut: &models.GroupExhibit{ID: "g-1"}},
		invites: &fakeInvitesRepo{hasAccepted: true, createErr: common.ErrorConflict},
	}
	svc := newInviteService(t, db, rm)

	_, err := svc.Invite(context.Background(), "member", "newcomer", "g-1")
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want ErrorConflict, got %v", err)
	}
}

func TestRespond_Accept(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		invites: &fakeInvitesRepo{getOut: &models.GroupInvite{ID: "i-1", UserID: "invitee", State: models.InviteStatePending}},
	}
	svc := newInviteService(t, db, rm)

	if err := svc.Respond(context.Background(), "invitee", "i-1", models.InviteStateAccepted); err != nil {
		t.Fatalf("Respond error: %v", err)
	}
	if len(rm.invites.decided) != 2 || rm.invites.decided[1] != models.InviteStateAccepted {
		t.Fatalf("transition not applied: %v", rm.invites.decided)
	}
}

func TestRespond_InvalidDecision(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	svc := newInviteService(t, db, &fakeRepoManager{invites: &fakeInvitesRepo{}})
	err := svc.Respond(context.Background(), "invitee", "i-1", "MAYBE")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
}

func TestRespond_NotInvitee(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		invites: &fakeInvitesRepo{getOut: &models.GroupInvite{ID: "i-1", UserID: "invitee"}},
	}
	svc := newInviteService(t, db, rm)

	err := svc.Respond(context.Background(), "intruder", "i-1", models.InviteStateDeclined)
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("want ErrorForbidden, got %v", err)
	}
	if rm.invites.decided != nil {
		t.Fatal("no transition may be applied")
	}
}

func TestRespond_AlreadyDecided(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		invites: &fakeInvitesRepo{
			getOut:    &models.GroupInvite{ID: "i-1", UserID: "invitee", State: models.InviteStateDeclined},
			decideErr: common.ErrorConflict,
		},
	}
	svc := newInviteService(t, db, rm)

	err := svc.Respond(context.Background(), "invitee", "i-1", models.InviteStateAccepted)
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want ErrorConflict, got %v", err)
	}
}

func TestListInvites(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		invites: &fakeInvitesRepo{listOut: []*models.GroupInviteView{
			{GroupInvite: models.GroupInvite{ID: "i-1"}, GroupName: "collective"},
		}},
	}
	svc := newInviteService(t, db, rm)

	got, err := svc.ListInvites(context.Background(), "invitee")
	if err != nil || len(got) != 1 || got[0].GroupName != "collective" {
		t.Fatalf("ListInvites = %v, %v", got, err)
	}
}

func TestMembers(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		groups:  &fakeGroupsRepo{getOut: &models.GroupExhibit{ID: "g-1"}},
		invites: &fakeInvitesRepo{members: []string{"a", "b", "c"}},
	}
	svc := newInviteService(t, db, rm)

	got, err := svc.Members(context.Background(), "g-1")
	if err != nil || len(got) != 3 {
		t.Fatalf("Members = %v, %v", got, err)
	}

	rm.groups.getErr = common.ErrorNotFound
	if _, err := svc.Members(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
