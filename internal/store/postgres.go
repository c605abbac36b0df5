package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/psds-microservice/arm-service-desk/internal/errs"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type userRow struct {
	Username     string `gorm:"primaryKey;type:varchar(64)"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type workstationRow struct {
	ID              string                                    `gorm:"primaryKey;type:varchar(32)"`
	InventoryNumber string                                    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name            string                                    `gorm:"type:varchar(255);not null"`
	Location        string                                    `gorm:"type:varchar(255)"`
	User            string                                    `gorm:"column:assigned_user;type:varchar(255)"`
	Department      string                                    `gorm:"type:varchar(255)"`
	Status          string                                    `gorm:"type:varchar(32);index;not null"`
	Characteristics datatypes.JSONType[model.Characteristics] `gorm:"type:jsonb;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (workstationRow) TableName() string { return "workstations" }

func toWorkstationRow(w *model.Workstation) workstationRow {
	return workstationRow{
		ID:              w.ID,
		InventoryNumber: w.InventoryNumber,
		Name:            w.Name,
		Location:        w.Location,
		User:            w.User,
		Department:      w.Department,
		Status:          string(w.Status),
		Characteristics: datatypes.NewJSONType(w.Characteristics),
		CreatedAt:       w.CreatedAt.Time,
		UpdatedAt:       w.UpdatedAt.Time,
	}
}

func (r workstationRow) model() model.Workstation {
	return model.Workstation{
		ID:              r.ID,
		InventoryNumber: r.InventoryNumber,
		Name:            r.Name,
		Location:        r.Location,
		User:            r.User,
		Department:      r.Department,
		Status:          model.WorkstationStatus(r.Status),
		Characteristics: r.Characteristics.Data(),
		CreatedAt:       model.At(r.CreatedAt),
		UpdatedAt:       model.At(r.UpdatedAt),
	}
}

type ticketRow struct {
	ID          string `gorm:"primaryKey;type:varchar(48)"`
	ArmID       string `gorm:"type:varchar(32);index;not null"`
	ProblemType string `gorm:"type:varchar(32);not null"`
	Priority    string `gorm:"type:varchar(32);index;not null"`
	Status      string `gorm:"type:varchar(32);index;not null"`
	Description string `gorm:"type:text"`
	CreatedBy   string `gorm:"type:varchar(64);index;not null"`
	UpdatedBy   string `gorm:"type:varchar(64)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ticketRow) TableName() string { return "tickets" }

func toTicketRow(t *model.Ticket) ticketRow {
	return ticketRow{
		ID:          t.ID,
		ArmID:       t.ArmID,
		ProblemType: string(t.ProblemType),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		UpdatedBy:   t.UpdatedBy,
		CreatedAt:   t.CreatedAt.Time,
		UpdatedAt:   t.UpdatedAt.Time,
	}
}

func (r ticketRow) model() model.Ticket {
	return model.Ticket{
		ID:          r.ID,
		ArmID:       r.ArmID,
		ProblemType: model.ProblemType(r.ProblemType),
		Priority:    model.Priority(r.Priority),
		Status:      model.TicketStatus(r.Status),
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
		CreatedAt:   model.At(r.CreatedAt),
		UpdatedAt:   model.At(r.UpdatedAt),
	}
}

// Postgres is the gorm-backed Store. Identifiers come from the
// workstation_number_seq and ticket_number_seq sequences created by the
// migrations.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) GetUser(ctx context.Context, username string) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &model.User{Username: row.Username, PasswordHash: row.PasswordHash, IsAdmin: row.IsAdmin}, nil
}

func (s *Postgres) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error
	return n, err
}

func (s *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	row := userRow{Username: u.Username, PasswordHash: u.PasswordHash, IsAdmin: u.IsAdmin}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Postgres) ListWorkstations(ctx context.Context) ([]model.Workstation, error) {
	var rows []workstationRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Workstation, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (s *Postgres) GetWorkstation(ctx context.Context, id string) (*model.Workstation, error) {
	var row workstationRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWorkstationNotFound
		}
		return nil, err
	}
	w := row.model()
	return &w, nil
}

func (s *Postgres) InventoryTaken(ctx context.Context, inventoryNumber, exceptID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&workstationRow{}).
		Where("inventory_number = ? AND id <> ?", inventoryNumber, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (s *Postgres) CreateWorkstation(ctx context.Context, w *model.Workstation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Raw("SELECT nextval('workstation_number_seq')").Scan(&next).Error; err != nil {
			return fmt.Errorf("next workstation number: %w", err)
		}
		w.ID = fmt.Sprintf(workstationIDFormat, next)
		row := toWorkstationRow(w)
		if err := tx.Create(&row).Error; err != nil {
			return mapDuplicate(err)
		}
		return nil
	})
}

func (s *Postgres) SaveWorkstation(ctx context.Context, w *model.Workstation) error {
	row := toWorkstationRow(w)
	res := s.db.WithContext(ctx).Model(&workstationRow{ID: w.ID}).
		Select("*").Omit("id", "created_at").Updates(&row)
	if res.Error != nil {
		return mapDuplicate(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrWorkstationNotFound
	}
	return nil
}

func (s *Postgres) DeleteWorkstation(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&workstationRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrWorkstationNotFound
	}
	return nil
}

func (s *Postgres) ListTickets(ctx context.Context, createdBy string) ([]model.Ticket, error) {
	var rows []ticketRow
	tx := s.db.WithContext(ctx).Model(&ticketRow{})
	if createdBy != "" {
		tx = tx.Where("created_by = ?", createdBy)
	}
	if err := tx.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Ticket, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (s *Postgres) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	var row ticketRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	t := row.model()
	return &t, nil
}

func (s *Postgres) CreateTicket(ctx context.Context, t *model.Ticket) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Raw("SELECT nextval('ticket_number_seq')").Scan(&next).Error; err != nil {
			return fmt.Errorf("next ticket number: %w", err)
		}
		t.ID = fmt.Sprintf(ticketIDFormat, t.CreatedAt.Format(ticketIDDate), next)
		row := toTicketRow(t)
		return tx.Create(&row).Error
	})
}

func (s *Postgres) SaveTicket(ctx context.Context, t *model.Ticket) error {
	row := toTicketRow(t)
	res := s.db.WithContext(ctx).Model(&ticketRow{ID: t.ID}).
		Select("*").Omit("id", "created_at").Updates(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrTicketNotFound
	}
	return nil
}

func (s *Postgres) CountActiveTickets(ctx context.Context, armID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&ticketRow{}).
		Where("arm_id = ? AND status IN ?", armID, []string{
			string(model.TicketStatusNew), string(model.TicketStatusInProgress),
		}).
		Count(&n).Error
	return n, err
}

// mapDuplicate relies on gorm's TranslateError being enabled in database.Open.
func mapDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.ErrDuplicateInventory
	}
	return err
}
