package scheduling_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	drivestore "github.com/dalemusser/placementhub/internal/app/store/drives"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/app/workflow/flowtest"
	"github.com/dalemusser/placementhub/internal/app/workflow/scheduling"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeSeasons struct{ rows []models.RecruitmentSeason }

func (f *fakeSeasons) Create(_ context.Context, rs models.RecruitmentSeason) (models.RecruitmentSeason, error) {
	f.rows = append(f.rows, rs)
	return rs, nil
}

func (f *fakeSeasons) List(context.Context) ([]models.RecruitmentSeason, error) { return f.rows, nil }

type fakeCycles []models.CompanySeasonCycle

func (f fakeCycles) GetByID(_ context.Context, id primitive.ObjectID) (models.CompanySeasonCycle, error) {
	for _, c := range f {
		if c.ID == id {
			return c, nil
		}
	}
	return models.CompanySeasonCycle{}, mongo.ErrNoDocuments
}

func (f fakeCycles) IDs(_ context.Context, flt cyclestore.ListFilter) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, c := range f {
		if flt.SeasonID == nil || c.SeasonID == *flt.SeasonID {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

// fakeDrives answers HasOverlap the way the store query does: same venue,
// not cancelled, windows intersect with inclusive endpoints.
type fakeDrives struct {
	rows     []models.Drive
	lastList drivestore.ListFilter
}

func (f *fakeDrives) Snapshot() func() {
	saved := slices.Clone(f.rows)
	return func() { f.rows = saved }
}

func (f *fakeDrives) Create(_ context.Context, d models.Drive) (models.Drive, error) {
	f.rows = append(f.rows, d)
	return d, nil
}

func (f *fakeDrives) GetByID(_ context.Context, id primitive.ObjectID) (models.Drive, error) {
	for _, d := range f.rows {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Drive{}, mongo.ErrNoDocuments
}

func (f *fakeDrives) Update(_ context.Context, d models.Drive) error {
	for i := range f.rows {
		if f.rows[i].ID == d.ID {
			d.IsConflictFlagged = f.rows[i].IsConflictFlagged
			f.rows[i] = d
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeDrives) HasOverlap(_ context.Context, venue string, start, end time.Time) (bool, error) {
	for _, d := range f.rows {
		if d.Venue != venue || d.Status == models.DriveCancelled || d.StartAt == nil || d.EndAt == nil {
			continue
		}
		if !d.StartAt.After(end) && !d.EndAt.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDrives) List(_ context.Context, flt drivestore.ListFilter, limit int64) ([]models.Drive, error) {
	f.lastList = flt
	var out []models.Drive
	for _, d := range f.rows {
		if flt.CycleIDs != nil && !slices.Contains(flt.CycleIDs, d.CycleID) {
			continue
		}
		if flt.Status != "" && d.Status != flt.Status {
			continue
		}
		if int64(len(out)) < limit {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeFollowers map[primitive.ObjectID][]primitive.ObjectID

func (f fakeFollowers) FollowerIDs(_ context.Context, companyID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return f[companyID], nil
}

type fakeNotifications struct {
	rows []models.Notification
	fail bool
}

func (f *fakeNotifications) Snapshot() func() {
	saved := slices.Clone(f.rows)
	return func() { f.rows = saved }
}

func (f *fakeNotifications) InsertMany(_ context.Context, rows []models.Notification) error {
	if f.fail {
		return errors.New("insert failed")
	}
	f.rows = append(f.rows, rows...)
	return nil
}

type harness struct {
	engine        *scheduling.Engine
	seasons       *fakeSeasons
	drives        *fakeDrives
	notifications *fakeNotifications
	followers     fakeFollowers
	sink          *flowtest.Sink
	tx            *flowtest.Tx

	company, season primitive.ObjectID
	cycle           models.CompanySeasonCycle
}

func newHarness() *harness {
	h := &harness{
		seasons:       &fakeSeasons{},
		drives:        &fakeDrives{},
		notifications: &fakeNotifications{},
		followers:     fakeFollowers{},
		sink:          &flowtest.Sink{},
		company:       primitive.NewObjectID(),
		season:        primitive.NewObjectID(),
	}
	h.cycle = models.CompanySeasonCycle{ID: primitive.NewObjectID(), CompanyID: h.company, SeasonID: h.season}
	h.tx = flowtest.NewTx(h.drives, h.notifications)
	h.engine = &scheduling.Engine{
		Env: flow.Env{
			Tx:    h.tx,
			Audit: h.sink,
			Now:   flowtest.FixedClock(time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC), time.Second),
		},
		Seasons:       h.seasons,
		Cycles:        fakeCycles{h.cycle},
		Drives:        h.drives,
		Followers:     h.followers,
		Notifications: h.notifications,
	}
	return h
}

func at(day, hour int) *time.Time {
	t := time.Date(2026, 10, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func (h *harness) drive(venue string, start, end *time.Time) scheduling.DriveInput {
	return scheduling.DriveInput{
		CompanyID: h.company,
		CycleID:   h.cycle.ID,
		Title:     "Online assessment",
		Stage:     models.StageOA,
		Venue:     venue,
		StartAt:   start,
		EndAt:     end,
	}
}

func TestCreateSeason(t *testing.T) {
	h := newHarness()
	admin := testutil.Actor(models.RoleAdmin)

	rs, err := h.engine.CreateSeason(context.Background(), admin, scheduling.SeasonInput{
		Name:         "Placements 2026",
		SeasonType:   models.SeasonPlacement,
		AcademicYear: "2026-27",
		StartDate:    at(1, 0),
		EndDate:      at(30, 0),
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("CreateSeason: %v", err)
	}
	if !rs.IsActive || rs.CreatedBy == nil || *rs.CreatedBy != admin.ID {
		t.Errorf("season = %+v", rs)
	}
	if h.sink.Last().Action != audit.ActionCreateSeason {
		t.Errorf("audit = %v", h.sink.Actions())
	}
}

func TestCreateSeason_Refusals(t *testing.T) {
	valid := scheduling.SeasonInput{Name: "S", SeasonType: models.SeasonIntern, AcademicYear: "2026-27"}
	backwards := valid
	backwards.StartDate, backwards.EndDate = at(10, 0), at(9, 0)
	badType := valid
	badType.SeasonType = "summer"

	tests := []struct {
		name  string
		actor *models.User
		in    scheduling.SeasonInput
		want  apperr.Kind
	}{
		{"coordinator", testutil.CoordinatorActor(models.CoordinatorGeneral), valid, apperr.KindForbidden},
		{"end before start", testutil.Actor(models.RoleAdmin), backwards, apperr.KindValidation},
		{"unknown type", testutil.Actor(models.RoleAdmin), badType, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			_, err := h.engine.CreateSeason(context.Background(), tt.actor, tt.in)
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q, want %q (err=%v)", got, tt.want, err)
			}
			if len(h.seasons.rows) != 0 {
				t.Error("refused create stored a season")
			}
		})
	}
}

func TestCreateDrive_ConflictFlag(t *testing.T) {
	h := newHarness()
	actor := testutil.CoordinatorActor(models.CoordinatorGeneral)
	ctx := context.Background()

	first, err := h.engine.CreateDrive(ctx, actor, h.drive("Hall A", at(5, 9), at(5, 12)))
	if err != nil {
		t.Fatalf("first drive: %v", err)
	}
	if first.IsConflictFlagged || first.Status != models.DriveTentative {
		t.Errorf("first drive = %+v", first)
	}

	tests := []struct {
		name  string
		venue string
		start *time.Time
		end   *time.Time
		want  bool
	}{
		{"overlapping window", "Hall A", at(5, 11), at(5, 14), true},
		{"touching endpoint", "Hall A", at(5, 12), at(5, 13), true},
		{"other venue", "Hall B", at(5, 9), at(5, 12), false},
		{"later window", "Hall A", at(6, 9), at(6, 12), false},
		{"no window", "Hall A", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := h.engine.CreateDrive(ctx, actor, h.drive(tt.venue, tt.start, tt.end))
			if err != nil {
				t.Fatalf("CreateDrive: %v", err)
			}
			if d.IsConflictFlagged != tt.want {
				t.Errorf("flagged = %v, want %v", d.IsConflictFlagged, tt.want)
			}
		})
	}
}

func TestCreateDrive_CancelledDrivesDoNotConflict(t *testing.T) {
	h := newHarness()
	h.drives.rows = append(h.drives.rows, models.Drive{
		ID: primitive.NewObjectID(), Venue: "Hall A", Status: models.DriveCancelled,
		StartAt: at(5, 9), EndAt: at(5, 12),
	})

	d, err := h.engine.CreateDrive(context.Background(), testutil.Actor(models.RoleAdmin), h.drive("Hall A", at(5, 9), at(5, 12)))
	if err != nil {
		t.Fatalf("CreateDrive: %v", err)
	}
	if d.IsConflictFlagged {
		t.Error("cancelled drive caused a conflict flag")
	}
}

func TestCreateDrive_Refusals(t *testing.T) {
	h := newHarness()
	admin := testutil.Actor(models.RoleAdmin)

	wrongCompany := h.drive("", nil, nil)
	wrongCompany.CompanyID = primitive.NewObjectID()
	unknownCycle := h.drive("", nil, nil)
	unknownCycle.CycleID = primitive.NewObjectID()
	badStage := h.drive("", nil, nil)
	badStage.Stage = "lunch"

	tests := []struct {
		name  string
		actor *models.User
		in    scheduling.DriveInput
		want  apperr.Kind
	}{
		{"student", testutil.Actor(models.RoleStudent), h.drive("", nil, nil), apperr.KindForbidden},
		{"end before start", admin, h.drive("Hall A", at(5, 12), at(5, 9)), apperr.KindValidation},
		{"cycle of another company", admin, wrongCompany, apperr.KindValidation},
		{"unknown cycle", admin, unknownCycle, apperr.KindNotFound},
		{"unknown stage", admin, badStage, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.engine.CreateDrive(context.Background(), tt.actor, tt.in)
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q, want %q (err=%v)", got, tt.want, err)
			}
		})
	}
	if len(h.drives.rows) != 0 {
		t.Errorf("refused creates stored %d drives", len(h.drives.rows))
	}
}

func TestUpdateDrive_KeepsConflictFlag(t *testing.T) {
	h := newHarness()
	admin := testutil.Actor(models.RoleAdmin)
	ctx := context.Background()

	h.engine.CreateDrive(ctx, admin, h.drive("Hall A", at(5, 9), at(5, 12)))
	second, err := h.engine.CreateDrive(ctx, admin, h.drive("Hall A", at(5, 10), at(5, 11)))
	if err != nil || !second.IsConflictFlagged {
		t.Fatalf("second drive = %+v, err = %v", second, err)
	}

	venue := "Hall Z"
	updated, err := h.engine.UpdateDrive(ctx, admin, second.ID, scheduling.DrivePatch{Venue: &venue})
	if err != nil {
		t.Fatalf("UpdateDrive: %v", err)
	}
	if !updated.IsConflictFlagged {
		t.Error("conflict flag cleared by an update")
	}
	if updated.Venue != "Hall Z" {
		t.Errorf("venue = %q", updated.Venue)
	}

	_, err = h.engine.UpdateDrive(ctx, admin, second.ID, scheduling.DrivePatch{EndAt: at(4, 0)})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("backwards window: got %v, want VALIDATION_FAILED", err)
	}
}

func TestConfirmDrive_NotifiesFollowers(t *testing.T) {
	h := newHarness()
	admin := testutil.Actor(models.RoleAdmin)
	ctx := context.Background()
	s1, s2 := primitive.NewObjectID(), primitive.NewObjectID()
	h.followers[h.company] = []primitive.ObjectID{s1, s2}

	d, _ := h.engine.CreateDrive(ctx, admin, h.drive("", nil, nil))
	confirmed, n, err := h.engine.ConfirmDrive(ctx, admin, d.ID)
	if err != nil {
		t.Fatalf("ConfirmDrive: %v", err)
	}
	if confirmed.Status != models.DriveConfirmed || n != 2 {
		t.Errorf("status = %s, notified = %d", confirmed.Status, n)
	}
	if len(h.notifications.rows) != 2 {
		t.Fatalf("notifications = %d, want 2", len(h.notifications.rows))
	}
	for _, row := range h.notifications.rows {
		if row.Type != scheduling.NotificationDriveConfirmed || row.Payload["driveId"] != d.ID.Hex() || row.IsRead {
			t.Errorf("notification = %+v", row)
		}
	}
	last := h.sink.Last()
	if last.Action != audit.ActionConfirmDrive || last.Meta["notified"] != "2" {
		t.Errorf("audit entry = %+v", last)
	}
}

func TestConfirmDrive_FailedNotificationsRollBack(t *testing.T) {
	h := newHarness()
	admin := testutil.Actor(models.RoleAdmin)
	ctx := context.Background()
	h.followers[h.company] = []primitive.ObjectID{primitive.NewObjectID()}

	d, _ := h.engine.CreateDrive(ctx, admin, h.drive("", nil, nil))
	h.notifications.fail = true

	if _, _, err := h.engine.ConfirmDrive(ctx, admin, d.ID); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("got %v, want INTERNAL", err)
	}
	got, _ := h.drives.GetByID(ctx, d.ID)
	if got.Status != models.DriveTentative {
		t.Errorf("status = %s, want tentative after rollback", got.Status)
	}
	if h.tx.Aborts != 1 {
		t.Errorf("aborts = %d, want 1", h.tx.Aborts)
	}
}

func TestConfirmDrive_Refusals(t *testing.T) {
	h := newHarness()
	admin := testutil.Actor(models.RoleAdmin)
	ctx := context.Background()

	in := h.drive("", nil, nil)
	in.Status = models.DriveCancelled
	cancelled, _ := h.engine.CreateDrive(ctx, admin, in)

	if _, _, err := h.engine.ConfirmDrive(ctx, admin, cancelled.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("cancelled drive: got %v, want CONFLICT", err)
	}
	if _, _, err := h.engine.ConfirmDrive(ctx, admin, primitive.NewObjectID()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown drive: got %v, want NOT_FOUND", err)
	}
	if _, _, err := h.engine.ConfirmDrive(ctx, testutil.Actor(models.RoleSupport), cancelled.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("support: got %v, want FORBIDDEN", err)
	}
}

func TestListDrives_SeasonFilter(t *testing.T) {
	h := newHarness()
	admin := testutil.Actor(models.RoleAdmin)
	ctx := context.Background()
	h.engine.CreateDrive(ctx, admin, h.drive("", nil, nil))

	rows, err := h.engine.ListDrives(ctx, admin, scheduling.DriveQuery{SeasonID: &h.season})
	if err != nil {
		t.Fatalf("ListDrives: %v", err)
	}
	if len(rows) != 1 || !slices.Equal(h.drives.lastList.CycleIDs, []primitive.ObjectID{h.cycle.ID}) {
		t.Errorf("rows = %d, filter = %+v", len(rows), h.drives.lastList)
	}

	other := primitive.NewObjectID()
	rows, err = h.engine.ListDrives(ctx, admin, scheduling.DriveQuery{SeasonID: &other})
	if err != nil || len(rows) != 0 {
		t.Errorf("season without cycles: rows = %v, err = %v", rows, err)
	}
}
