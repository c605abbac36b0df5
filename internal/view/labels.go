package view

import "github.com/psds-microservice/arm-service-desk/internal/model"

// Labels is one display table. Lookups fall back to the raw value, so an
// enum the server adds later still renders.
type Labels struct {
	WorkstationStatus map[model.WorkstationStatus]string
	TicketStatus      map[model.TicketStatus]string
	ProblemType       map[model.ProblemType]string
	Priority          map[model.Priority]string
	Admin             string
	Unassigned        string
}

var LocaleEN = Labels{
	WorkstationStatus: map[model.WorkstationStatus]string{
		model.WorkstationOperational: "Operational",
		model.WorkstationBroken:      "Broken",
		model.WorkstationMaintenance: "Maintenance",
	},
	TicketStatus: map[model.TicketStatus]string{
		model.TicketStatusNew:        "New",
		model.TicketStatusInProgress: "In progress",
		model.TicketStatusResolved:   "Resolved",
	},
	ProblemType: map[model.ProblemType]string{
		model.ProblemHardware: "Hardware",
		model.ProblemSoftware: "Software",
		model.ProblemNetwork:  "Network",
		model.ProblemOther:    "Other",
	},
	Priority: map[model.Priority]string{
		model.PriorityLow:      "Low",
		model.PriorityMedium:   "Medium",
		model.PriorityHigh:     "High",
		model.PriorityCritical: "Critical",
	},
	Admin:      "Administrator",
	Unassigned: "not specified",
}

var LocaleRU = Labels{
	WorkstationStatus: map[model.WorkstationStatus]string{
		model.WorkstationOperational: "Рабочий",
		model.WorkstationBroken:      "Сломан",
		model.WorkstationMaintenance: "Обслуживание",
	},
	TicketStatus: map[model.TicketStatus]string{
		model.TicketStatusNew:        "Новая",
		model.TicketStatusInProgress: "В работе",
		model.TicketStatusResolved:   "Решена",
	},
	ProblemType: map[model.ProblemType]string{
		model.ProblemHardware: "Аппаратная",
		model.ProblemSoftware: "Программная",
		model.ProblemNetwork:  "Сетевая",
		model.ProblemOther:    "Другая",
	},
	Priority: map[model.Priority]string{
		model.PriorityLow:      "Низкий",
		model.PriorityMedium:   "Средний",
		model.PriorityHigh:     "Высокий",
		model.PriorityCritical: "Критический",
	},
	Admin:      "Администратор",
	Unassigned: "не указан",
}

// ForLocale returns the table for "ru"; anything else gets English.
func ForLocale(locale string) Labels {
	if locale == "ru" {
		return LocaleRU
	}
	return LocaleEN
}

func (l Labels) WorkstationStatusLabel(s model.WorkstationStatus) string {
	return lookup(l.WorkstationStatus, s)
}

func (l Labels) TicketStatusLabel(s model.TicketStatus) string {
	return lookup(l.TicketStatus, s)
}

func (l Labels) ProblemTypeLabel(p model.ProblemType) string {
	return lookup(l.ProblemType, p)
}

func (l Labels) PriorityLabel(p model.Priority) string {
	return lookup(l.Priority, p)
}

func WorkstationStatusLabel(s model.WorkstationStatus) string {
	return LocaleEN.WorkstationStatusLabel(s)
}

func TicketStatusLabel(s model.TicketStatus) string { return LocaleEN.TicketStatusLabel(s) }
func ProblemTypeLabel(p model.ProblemType) string   { return LocaleEN.ProblemTypeLabel(p) }
func PriorityLabel(p model.Priority) string         { return LocaleEN.PriorityLabel(p) }

func lookup[K ~string](table map[K]string, key K) string {
	if v, ok := table[key]; ok {
		return v
	}
	return string(key)
}
