package model

type WorkstationStatus string

const (
	WorkstationOperational WorkstationStatus = "operational"
	WorkstationBroken      WorkstationStatus = "broken"
	WorkstationMaintenance WorkstationStatus = "maintenance"
)

// Valid reports whether s is one of the known equipment states.
func (s WorkstationStatus) Valid() bool {
	switch s {
	case WorkstationOperational, WorkstationBroken, WorkstationMaintenance:
		return true
	}
	return false
}

// Characteristics is the free-text hardware sheet of a workstation. Every
// field is optional.
type Characteristics struct {
	CPU           string `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	RAM           string `json:"ram,omitempty" yaml:"ram,omitempty"`
	Storage       string `json:"storage,omitempty" yaml:"storage,omitempty"`
	OS            string `json:"os,omitempty" yaml:"os,omitempty"`
	Monitor       string `json:"monitor,omitempty" yaml:"monitor,omitempty"`
	KeyboardMouse string `json:"keyboard_mouse,omitempty" yaml:"keyboard_mouse,omitempty"`
	Additional    string `json:"additional,omitempty" yaml:"additional,omitempty"`
}

// Merge overlays the non-empty fields of patch onto c.
func (c Characteristics) Merge(patch Characteristics) Characteristics {
	if patch.CPU != "" {
		c.CPU = patch.CPU
	}
	if patch.RAM != "" {
		c.RAM = patch.RAM
	}
	if patch.Storage != "" {
		c.Storage = patch.Storage
	}
	if patch.OS != "" {
		c.OS = patch.OS
	}
	if patch.Monitor != "" {
		c.Monitor = patch.Monitor
	}
	if patch.KeyboardMouse != "" {
		c.KeyboardMouse = patch.KeyboardMouse
	}
	if patch.Additional != "" {
		c.Additional = patch.Additional
	}
	return c
}

// Workstation is an ARM unit: one tracked piece of office equipment.
type Workstation struct {
	ID              string            `json:"id" yaml:"id"`
	InventoryNumber string            `json:"inventory_number" yaml:"inventory_number"`
	Name            string            `json:"name" yaml:"name"`
	Location        string            `json:"location" yaml:"location"`
	User            string            `json:"user" yaml:"user"`
	Department      string            `json:"department" yaml:"department"`
	Status          WorkstationStatus `json:"status" yaml:"status"`
	Characteristics Characteristics   `json:"characteristics" yaml:"characteristics"`

	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
	UpdatedAt Timestamp `json:"updated_at" yaml:"updated_at"`
}

// WorkstationInput is the body of an admin create request.
type WorkstationInput struct {
	InventoryNumber string          `json:"inventory_number" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Location        string          `json:"location"`
	User            string          `json:"user"`
	Department      string          `json:"department"`
	Characteristics Characteristics `json:"characteristics"`
}

// WorkstationPatch is a partial update; nil fields are left unchanged.
type WorkstationPatch struct {
	InventoryNumber *string            `json:"inventory_number,omitempty"`
	Name            *string            `json:"name,omitempty"`
	Location        *string            `json:"location,omitempty"`
	User            *string            `json:"user,omitempty"`
	Department      *string            `json:"department,omitempty"`
	Status          *WorkstationStatus `json:"status,omitempty"`
	Characteristics *Characteristics   `json:"characteristics,omitempty"`
}

// Empty reports whether the patch carries no change.
func (p WorkstationPatch) Empty() bool {
	return p.InventoryNumber == nil && p.Name == nil && p.Location == nil &&
		p.User == nil && p.Department == nil && p.Status == nil && p.Characteristics == nil
}

// Apply returns w with the patch applied. Characteristics are merged field
// by field rather than replaced.
func (p WorkstationPatch) Apply(w Workstation) Workstation {
	if p.InventoryNumber != nil {
		w.InventoryNumber = *p.InventoryNumber
	}
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Location != nil {
		w.Location = *p.Location
	}
	if p.User != nil {
		w.User = *p.User
	}
	if p.Department != nil {
		w.Department = *p.Department
	}
	if p.Status != nil {
		w.Status = *p.Status
	}
	if p.Characteristics != nil {
		w.Characteristics = w.Characteristics.Merge(*p.Characteristics)
	}
	return w
}
