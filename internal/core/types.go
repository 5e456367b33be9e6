package core

import "campcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	CamperStatus       = domain.CamperStatus
	Gender             = domain.Gender
	Severity           = domain.Severity
	Hall               = domain.Hall
	Floor              = domain.Floor
	Bed                = domain.Bed
	BedRef             = domain.BedRef
	Category           = domain.Category
	Profile            = domain.Profile
	Camper             = domain.Camper
	OccupancySummary   = domain.OccupancySummary
	BedConstraint      = domain.BedConstraint
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityHall     = domain.EntityHall
	EntityFloor    = domain.EntityFloor
	EntityBed      = domain.EntityBed
	EntityCategory = domain.EntityCategory
	EntityCamper   = domain.EntityCamper
)

const (
	StatusPending    = domain.StatusPending
	StatusVerified   = domain.StatusVerified
	StatusSuperseded = domain.StatusSuperseded
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
