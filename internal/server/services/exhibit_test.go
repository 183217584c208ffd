package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nick102030/Jolvre-BE/internal/common"
	"github.com/nick102030/Jolvre-BE/internal/dbx"
	"github.com/nick102030/Jolvre-BE/internal/server/models"
	exhibitsrepo "github.com/nick102030/Jolvre-BE/internal/server/repositories/exhibits"
	groupsrepo "github.com/nick102030/Jolvre-BE/internal/server/repositories/groups"
	invitesrepo "github.com/nick102030/Jolvre-BE/internal/server/repositories/invites"
)

// --- fakes ---

type fakeExhibitsRepo struct {
	createErr  error
	created    *models.Exhibit
	getOut     *models.Exhibit
	getErr     error
	updated    *models.Exhibit
	updatedVer int64
	updateErr  error
	replaced   []string
	replaceErr error
	deleteErr  error
	listOut    []*models.Exhibit
}

func (f *fakeExhibitsRepo) Create(ctx context.Context, e *models.Exhibit) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = e
	return nil
}

func (f *fakeExhibitsRepo) GetByID(ctx context.Context, id string) (*models.Exhibit, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeExhibitsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Exhibit, error) {
	return f.listOut, nil
}

func (f *fakeExhibitsRepo) UpdateVersioned(ctx context.Context, e *models.Exhibit, expectedVersion int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = e
	f.updatedVer = expectedVersion
	return nil
}

func (f *fakeExhibitsRepo) ReplaceImages(ctx context.Context, exhibitID string, urls []string) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = urls
	return nil
}

func (f *fakeExhibitsRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

type fakeGroupsRepo struct {
	created *models.GroupExhibit
	getOut  *models.GroupExhibit
	getErr  error
}

func (f *fakeGroupsRepo) Create(ctx context.Context, g *models.GroupExhibit) error {
	f.created = g
	return nil
}

func (f *fakeGroupsRepo) GetByID(ctx context.Context, id string) (*models.GroupExhibit, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeInvitesRepo struct {
	createErr   error
	created     *models.GroupInvite
	getOut      *models.GroupInvite
	getErr      error
	decided     []string // invite id, state pairs flattened
	decideErr   error
	listOut     []*models.GroupInviteView
	hasAccepted bool
	hasErr      error
	members     []string
}

func (f *fakeInvitesRepo) CreateIfNoActive(ctx context.Context, inv *models.GroupInvite) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = inv
	return nil
}

func (f *fakeInvitesRepo) GetByID(ctx context.Context, id string) (*models.GroupInvite, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeInvitesRepo) Decide(ctx context.Context, id string, state string) error {
	if f.decideErr != nil {
		return f.decideErr
	}
	f.decided = append(f.decided, id, state)
	return nil
}

func (f *fakeInvitesRepo) ListByUser(ctx context.Context, userID string) ([]*models.GroupInviteView, error) {
	return f.listOut, nil
}

func (f *fakeInvitesRepo) HasAccepted(ctx context.Context, userID, groupID string) (bool, error) {
	return f.hasAccepted, f.hasErr
}

func (f *fakeInvitesRepo) ListAcceptedMembers(ctx context.Context, groupID string) ([]string, error) {
	return f.members, nil
}

type fakeRepoManager struct {
	exhibits *fakeExhibitsRepo
	groups   *fakeGroupsRepo
	invites  *fakeInvitesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error      { return nil }
func (m *fakeRepoManager) Exhibits(db dbx.DBTX) exhibitsrepo.Repository      { return m.exhibits }
func (m *fakeRepoManager) Groups(db dbx.DBTX) groupsrepo.Repository         { return m.groups }
func (m *fakeRepoManager) Invites(db dbx.DBTX) invitesrepo.Repository       { return m.invites }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newExhibitService(t *testing.T, db *sql.DB, rm *fakeRepoManager, store *fakeStore) *ExhibitService {
	t.Helper()
	uploads := NewUploadService(store, testLogger(), 4)
	return NewExhibitService(db, rm, uploads, store, testLogger())
}

func pngFile(name, payload string) FileUpload {
	return FileUpload{Filename: name, ContentType: "image/png", Data: []byte(payload)}
}

// --- create ---

func TestCreateExhibit_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	store := newFakeStore()
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{}}
	svc := newExhibitService(t, db, rm, store)

	req := CreateExhibitRequest{
		Fields:    ExhibitFields{Title: "Dawn", Price: 100},
		Thumbnail: pngFile("thumb.png", "T"),
		Gallery:   []FileUpload{pngFile("1.png", "g0"), pngFile("2.png", "g1")},
	}

	id, err := svc.Create(context.Background(), "u-1", req)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if id == "" {
		t.Fatal("empty exhibit id")
	}

	created := rm.exhibits.created
	if created == nil || created.ThumbnailURL == "" {
		t.Fatalf("aggregate missing thumbnail: %+v", created)
	}
	if store.payloadAt(t, created.ThumbnailURL) != "T" {
		t.Fatal("thumbnail slot holds wrong object")
	}
	if len(created.ImageURLs) != 2 {
		t.Fatalf("want 2 gallery urls, got %d", len(created.ImageURLs))
	}
	for i, u := range created.ImageURLs {
		want := string(req.Gallery[i].Data)
		if store.payloadAt(t, u) != want {
			t.Fatalf("gallery slot %d out of order", i)
		}
	}
	if len(rm.exhibits.replaced) != 2 {
		t.Fatal("gallery rows not written")
	}
}

func TestCreateExhibit_MissingTitle(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := newFakeStore()
	svc := newExhibitService(t, db, &fakeRepoManager{exhibits: &fakeExhibitsRepo{}}, store)

	_, err := svc.Create(context.Background(), "u-1", CreateExhibitRequest{
		Thumbnail: pngFile("t.png", "T"),
	})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
	if store.stored() != 0 {
		t.Fatal("validation failure must not upload")
	}
}

func TestCreateExhibit_BadGalleryType_NoSideEffects(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := newFakeStore()
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{}}
	svc := newExhibitService(t, db, rm, store)

	req := CreateExhibitRequest{
		Fields:    ExhibitFields{Title: "Dawn"},
		Thumbnail: pngFile("t.png", "T"),
		Gallery:   []FileUpload{{Filename: "x.gif", ContentType: "image/gif", Data: []byte("g")}},
	}

	_, err := svc.Create(context.Background(), "u-1", req)
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
	if store.stored() != 0 {
		t.Fatal("nothing may be uploaded when any file is invalid")
	}
	if rm.exhibits.created != nil {
		t.Fatal("aggregate must not be persisted")
	}
}

func TestCreateExhibit_DBErrorCompensatesUploads(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	store := newFakeStore()
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{createErr: errors.New("db down")}}
	svc := newExhibitService(t, db, rm, store)

	req := CreateExhibitRequest{
		Fields:    ExhibitFields{Title: "Dawn"},
		Thumbnail: pngFile("t.png", "T"),
		Gallery:   []FileUpload{pngFile("1.png", "g0")},
	}

	_, err := svc.Create(context.Background(), "u-1", req)
	if err == nil {
		t.Fatal("expected error")
	}
	if store.stored() != 0 {
		t.Fatalf("staged uploads must be deleted after failed commit, %d remain", store.stored())
	}
}

// --- update ---

func currentExhibit(store *fakeStore, t *testing.T) *models.Exhibit {
	t.Helper()
	// seed the store so the old assets exist as real objects
	oldThumb, err := store.Put(context.Background(), "old-thumb", []byte("old-T"), "image/png")
	if err != nil {
		t.Fatal(err)
	}
	oldImg, err := store.Put(context.Background(), "old-img", []byte("old-g"), "image/png")
	if err != nil {
		t.Fatal(err)
	}
	return &models.Exhibit{
		ID:           "e-1",
		UserID:       "u-1",
		Title:        "Dawn",
		ThumbnailURL: oldThumb,
		ImageURLs:    []string{oldImg},
		Version:      3,
	}
}

func TestUpdateExhibit_ReplacesThumbnailAndCleansOrphan(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	store := newFakeStore()
	current := currentExhibit(store, t)
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{getOut: current}}
	svc := newExhibitService(t, db, rm, store)

	thumb := pngFile("new.png", "new-T")
	err := svc.Update(context.Background(), "e-1", "u-1", UpdateExhibitRequest{
		Fields:    ExhibitFields{Title: "Dusk"},
		Thumbnail: &thumb,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	updated := rm.exhibits.updated
	if updated == nil || updated.Title != "Dusk" {
		t.Fatalf("aggregate not updated: %+v", updated)
	}
	if rm.exhibits.updatedVer != 3 {
		t.Fatalf("CAS must use the loaded version, got %d", rm.exhibits.updatedVer)
	}
	if store.payloadAt(t, updated.ThumbnailURL) != "new-T" {
		t.Fatal("new thumbnail not referenced")
	}
	// old thumbnail is the orphan; it must be gone, the gallery must remain
	if _, ok := store.objects["old-thumb"]; ok {
		t.Fatal("orphaned thumbnail not deleted after commit")
	}
	if _, ok := store.objects["old-img"]; !ok {
		t.Fatal("still-referenced gallery object was deleted")
	}
}

func TestUpdateExhibit_VersionConflict(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	store := newFakeStore()
	current := currentExhibit(store, t)
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{getOut: current, updateErr: common.ErrVersionConflict}}
	svc := newExhibitService(t, db, rm, store)

	thumb := pngFile("new.png", "new-T")
	err := svc.Update(context.Background(), "e-1", "u-1", UpdateExhibitRequest{
		Fields:    ExhibitFields{Title: "Dusk"},
		Thumbnail: &thumb,
	})
	if !errors.Is(err, common.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}

	// the loser's staged upload is compensated, the winner's assets survive
	if _, ok := store.objects["old-thumb"]; !ok {
		t.Fatal("loser must not delete the committed aggregate's assets")
	}
	if _, ok := store.objects["old-img"]; !ok {
		t.Fatal("loser must not delete the committed aggregate's assets")
	}
	for key, payload := range store.objects {
		if payload == "new-T" {
			t.Fatalf("staged upload %q not compensated", key)
		}
	}
}

func TestUpdateExhibit_NotOwner(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := newFakeStore()
	current := currentExhibit(store, t)
	rm := &fakeRepoManager{
		exhibits: &fakeExhibitsRepo{getOut: current},
		invites:  &fakeInvitesRepo{},
	}
	svc := newExhibitService(t, db, rm, store)

	err := svc.Update(context.Background(), "e-1", "intruder", UpdateExhibitRequest{
		Fields: ExhibitFields{Title: "Hijack"},
	})
	if !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("want ErrorForbidden, got %v", err)
	}
	if rm.exhibits.updated != nil {
		t.Fatal("no write may happen on authorization failure")
	}
}

func TestUpdateExhibit_AcceptedMemberOfGroupMayUpdate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	store := newFakeStore()
	current := currentExhibit(store, t)
	groupID := "g-1"
	current.GroupID = &groupID
	rm := &fakeRepoManager{
		exhibits: &fakeExhibitsRepo{getOut: current},
		invites:  &fakeInvitesRepo{hasAccepted: true},
	}
	svc := newExhibitService(t, db, rm, store)

	err := svc.Update(context.Background(), "e-1", "member-2", UpdateExhibitRequest{
		Fields: ExhibitFields{Title: "Joint work"},
	})
	if err != nil {
		t.Fatalf("accepted member update failed: %v", err)
	}
}

func TestUpdateExhibit_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := newFakeStore()
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{getErr: common.ErrorNotFound}}
	svc := newExhibitService(t, db, rm, store)

	err := svc.Update(context.Background(), "ghost", "u-1", UpdateExhibitRequest{
		Fields: ExhibitFields{Title: "x"},
	})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

// --- delete / get / list ---

func TestDeleteExhibit_RowFirstThenAssets(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	store := newFakeStore()
	current := currentExhibit(store, t)
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{getOut: current}}
	svc := newExhibitService(t, db, rm, store)

	if err := svc.Delete(context.Background(), "e-1", "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if store.stored() != 0 {
		t.Fatalf("all assets must be deleted, %d remain", store.stored())
	}
}

func TestDeleteExhibit_DBErrorKeepsAssets(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	store := newFakeStore()
	current := currentExhibit(store, t)
	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{getOut: current, deleteErr: errors.New("db down")}}
	svc := newExhibitService(t, db, rm, store)

	if err := svc.Delete(context.Background(), "e-1", "u-1"); err == nil {
		t.Fatal("expected error")
	}
	if store.stored() != 2 {
		t.Fatal("assets must never be deleted while the row still references them")
	}
}

func TestGetExhibit_GroupOwned(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	store := newFakeStore()
	groupID := "g-1"
	rm := &fakeRepoManager{
		exhibits: &fakeExhibitsRepo{getOut: &models.Exhibit{ID: "e-1", GroupID: &groupID, ThumbnailURL: "t"}},
		groups:   &fakeGroupsRepo{getOut: &models.GroupExhibit{ID: groupID, Name: "collective"}},
		invites:  &fakeInvitesRepo{members: []string{"u-1", "u-2"}},
	}
	svc := newExhibitService(t, db, rm, store)

	view, err := svc.Get(context.Background(), "e-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if view.GroupName != "collective" || len(view.Members) != 2 {
		t.Fatalf("group data not denormalized: %+v", view)
	}
}

func TestListByUser_Passthrough(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{exhibits: &fakeExhibitsRepo{listOut: []*models.Exhibit{{ID: "e-1"}}}}
	svc := newExhibitService(t, db, rm, newFakeStore())

	got, err := svc.ListByUser(context.Background(), "u-1")
	if err != nil || len(got) != 1 {
		t.Fatalf("ListByUser = %v, %v", got, err)
	}
}
