package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/psds-microservice/arm-service-desk/internal/errs"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	admin = model.Identity{Username: "admin", IsAdmin: true}
	alice = model.Identity{Username: "alice"}
	bob   = model.Identity{Username: "bob"}
)

func newDesk(t *testing.T) (*DeskService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := NewDeskService(mem, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	return svc, mem
}

func addArm(t *testing.T, svc *DeskService, inv, name string) *model.Workstation {
	t.Helper()
	w, err := svc.CreateWorkstation(context.Background(), model.WorkstationInput{
		InventoryNumber: inv,
		Name:            name,
		Location:        "Room 101",
		User:            "Ivanov",
		Department:      "Accounting",
		Characteristics: model.Characteristics{CPU: "i5", RAM: "16GB"},
	})
	require.NoError(t, err)
	return w
}

func TestDeskService_CreateWorkstation(t *testing.T) {
	svc, _ := newDesk(t)
	ctx := context.Background()

	w := addArm(t, svc, "INV-1", "Front desk")
	assert.Equal(t, "ARM-001", w.ID)
	assert.Equal(t, model.WorkstationOperational, w.Status)
	assert.Equal(t, "i5", w.Characteristics.CPU)

	_, err := svc.CreateWorkstation(ctx, model.WorkstationInput{InventoryNumber: "INV-1", Name: "Dup"})
	require.ErrorIs(t, err, errs.ErrDuplicateInventory)

	_, err = svc.CreateWorkstation(ctx, model.WorkstationInput{InventoryNumber: " ", Name: "x"})
	require.ErrorIs(t, err, errs.ErrValidation)

	w2 := addArm(t, svc, "INV-2", "Back office")
	assert.Equal(t, "ARM-002", w2.ID)
}

func TestDeskService_CreateWorkstation_ConcurrentDuplicates(t *testing.T) {
	svc, mem := newDesk(t)
	ctx := context.Background()

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dups    int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateWorkstation(ctx, model.WorkstationInput{InventoryNumber: "INV-RACE", Name: "PC"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, errs.ErrDuplicateInventory):
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, dups)
	list, err := mem.ListWorkstations(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeskService_UpdateWorkstation_MergesCharacteristics(t *testing.T) {
	svc, _ := newDesk(t)
	ctx := context.Background()
	w := addArm(t, svc, "INV-1", "Front desk")

	broken := model.WorkstationBroken
	got, err := svc.UpdateWorkstation(ctx, w.ID, model.WorkstationPatch{
		Status:          &broken,
		Characteristics: &model.Characteristics{OS: "Linux"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.WorkstationBroken, got.Status)
	assert.Equal(t, "i5", got.Characteristics.CPU)
	assert.Equal(t, "Linux", got.Characteristics.OS)

	bogus := model.WorkstationStatus("melted")
	_, err = svc.UpdateWorkstation(ctx, w.ID, model.WorkstationPatch{Status: &bogus})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.UpdateWorkstation(ctx, w.ID, model.WorkstationPatch{})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.UpdateWorkstation(ctx, "ARM-404", model.WorkstationPatch{Status: &broken})
	require.ErrorIs(t, err, errs.ErrWorkstationNotFound)

	addArm(t, svc, "INV-2", "Other")
	inv := "INV-2"
	_, err = svc.UpdateWorkstation(ctx, w.ID, model.WorkstationPatch{InventoryNumber: &inv})
	require.ErrorIs(t, err, errs.ErrDuplicateInventory)

	same := "INV-1"
	_, err = svc.UpdateWorkstation(ctx, w.ID, model.WorkstationPatch{InventoryNumber: &same})
	require.NoError(t, err)
}

func TestDeskService_DeleteWorkstation_RefusesActiveTickets(t *testing.T) {
	svc, _ := newDesk(t)
	ctx := context.Background()
	w := addArm(t, svc, "INV-1", "Front desk")

	tk, err := svc.CreateTicket(ctx, alice, model.TicketInput{
		ArmID: w.ID, ProblemType: model.ProblemHardware, Priority: model.PriorityHigh, Description: "disk full",
	})
	require.NoError(t, err)

	err = svc.DeleteWorkstation(ctx, w.ID)
	require.ErrorIs(t, err, errs.ErrActiveTickets)
	assert.Contains(t, err.Error(), "(1)")

	_, err = svc.UpdateTicketStatus(ctx, admin, tk.ID, model.TicketStatusResolved)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteWorkstation(ctx, w.ID))

	require.ErrorIs(t, svc.DeleteWorkstation(ctx, w.ID), errs.ErrWorkstationNotFound)
}

func TestDeskService_CreateTicket(t *testing.T) {
	svc, _ := newDesk(t)
	ctx := context.Background()
	w := addArm(t, svc, "INV-1", "Front desk")

	tk, err := svc.CreateTicket(ctx, alice, model.TicketInput{
		ArmID: w.ID, ProblemType: model.ProblemHardware, Priority: model.PriorityHigh, Description: "disk full",
	})
	require.NoError(t, err)
	assert.Equal(t, "TICKET-20261015-001", tk.ID)
	assert.Equal(t, model.TicketStatusNew, tk.Status)
	assert.Equal(t, "alice", tk.CreatedBy)

	_, err = svc.CreateTicket(ctx, alice, model.TicketInput{
		ArmID: "ARM-404", ProblemType: model.ProblemHardware, Priority: model.PriorityHigh,
	})
	require.ErrorIs(t, err, errs.ErrWorkstationNotFound)

	_, err = svc.CreateTicket(ctx, alice, model.TicketInput{
		ArmID: w.ID, ProblemType: "cosmic", Priority: model.PriorityHigh,
	})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.CreateTicket(ctx, alice, model.TicketInput{
		ArmID: w.ID, ProblemType: model.ProblemOther, Priority: "urgent",
	})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestDeskService_ListTickets_RoleFiltering(t *testing.T) {
	svc, _ := newDesk(t)
	ctx := context.Background()
	w := addArm(t, svc, "INV-1", "Front desk")
	for _, who := range []model.Identity{alice, bob, alice} {
		_, err := svc.CreateTicket(ctx, who, model.TicketInput{
			ArmID: w.ID, ProblemType: model.ProblemSoftware, Priority: model.PriorityLow,
		})
		require.NoError(t, err)
	}

	all, err := svc.ListTickets(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListTickets(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, tk := range mine {
		assert.Equal(t, "alice", tk.CreatedBy)
	}
}

func TestDeskService_UpdateTicketStatus_ForwardOnly(t *testing.T) {
	svc, _ := newDesk(t)
	ctx := context.Background()
	w := addArm(t, svc, "INV-1", "Front desk")
	tk, err := svc.CreateTicket(ctx, alice, model.TicketInput{
		ArmID: w.ID, ProblemType: model.ProblemNetwork, Priority: model.PriorityCritical,
	})
	require.NoError(t, err)

	got, err := svc.UpdateTicketStatus(ctx, admin, tk.ID, model.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusInProgress, got.Status)
	assert.Equal(t, "admin", got.UpdatedBy)

	got, err = svc.UpdateTicketStatus(ctx, admin, tk.ID, model.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusResolved, got.Status)

	_, err = svc.UpdateTicketStatus(ctx, admin, tk.ID, model.TicketStatusNew)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = svc.UpdateTicketStatus(ctx, admin, tk.ID, "closed")
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.UpdateTicketStatus(ctx, admin, "TICKET-404", model.TicketStatusResolved)
	require.ErrorIs(t, err, errs.ErrTicketNotFound)
}

func TestDeskService_Stats(t *testing.T) {
	svc, _ := newDesk(t)
	ctx := context.Background()
	w := addArm(t, svc, "INV-1", "Front desk")
	w2 := addArm(t, svc, "INV-2", "Back office")
	broken := model.WorkstationBroken
	_, err := svc.UpdateWorkstation(ctx, w2.ID, model.WorkstationPatch{Status: &broken})
	require.NoError(t, err)

	t1, err := svc.CreateTicket(ctx, alice, model.TicketInput{ArmID: w.ID, ProblemType: model.ProblemHardware, Priority: model.PriorityLow})
	require.NoError(t, err)
	_, err = svc.CreateTicket(ctx, bob, model.TicketInput{ArmID: w.ID, ProblemType: model.ProblemHardware, Priority: model.PriorityLow})
	require.NoError(t, err)
	_, err = svc.UpdateTicketStatus(ctx, admin, t1.ID, model.TicketStatusInProgress)
	require.NoError(t, err)

	st, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{
		TotalArms: 2, OperationalArms: 1,
		TotalTickets: 2, NewTickets: 1, InProgressTickets: 1,
	}, st)

	mine, err := svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{MyTickets: 1, MyInProgressTickets: 1}, mine)
}

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	a := NewAuthService(store.NewMemory(), "test-secret", time.Hour)
	a.cost = bcrypt.MinCost
	n, err := a.Seed(context.Background(), "user:user123, admin:admin123:admin")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	return a
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	a := newAuth(t)
	ctx := context.Background()

	res, err := a.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Username)
	assert.True(t, res.IsAdmin)
	require.NotEmpty(t, res.Token)

	who, err := a.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{Username: "admin", IsAdmin: true}, who)

	res, err = a.Login(ctx, "user", "user123")
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)

	_, err = a.Login(ctx, "user", "wrong")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = a.Login(ctx, "ghost", "user123")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestAuthService_VerifyRejects(t *testing.T) {
	a := newAuth(t)
	res, err := a.Login(context.Background(), "user", "user123")
	require.NoError(t, err)

	_, err = a.Verify(res.Token + "x")
	require.ErrorIs(t, err, errs.ErrInvalidToken)
	_, err = a.Verify("user")
	require.ErrorIs(t, err, errs.ErrInvalidToken)

	other := NewAuthService(store.NewMemory(), "other-secret", time.Hour)
	_, err = other.Verify(res.Token)
	require.ErrorIs(t, err, errs.ErrInvalidToken)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.Verify(res.Token)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestAuthService_SeedOnlyWhenEmpty(t *testing.T) {
	a := newAuth(t)
	n, err := a.Seed(context.Background(), "carol:pw")
	require.NoError(t, err)
	assert.Zero(t, n)

	fresh := NewAuthService(store.NewMemory(), "s", time.Hour)
	fresh.cost = bcrypt.MinCost
	_, err = fresh.Seed(context.Background(), "broken")
	require.ErrorIs(t, err, errs.ErrValidation)
}
