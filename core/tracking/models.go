package tracking

import (
	"time"

	"github.com/trezcool/progim/core"
)

// Catalog item type tags. Catalog names themselves stay an open string
// domain; only the type tag is a closed set.
const (
	CatalogTypeState    = "state"
	CatalogTypeAssignee = "assignee"
)

type Project struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Objective string    `json:"objective" db:"objective"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// Activity belongs to a Project. The project reference is advisory:
// deleting a Project leaves its activities in place (orphan-tolerant).
type Activity struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	Name        string    `json:"name" db:"name"`
	State       string    `json:"state" db:"state"`
	AssignedTo  string    `json:"assigned_to" db:"assigned_to"`
	StartDate   string    `json:"start_date" db:"start_date"` // YYYY-MM-DD, may be empty
	EndDate     string    `json:"end_date" db:"end_date"`     // YYYY-MM-DD, may be empty
	Percentage  int       `json:"percentage" db:"percentage"`
	Notes       string    `json:"notes" db:"notes"`
	DaysElapsed int       `json:"days_elapsed" db:"days_elapsed"` // stored; recomputed on every create/update
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type SubActivity struct {
	ID         string    `json:"id" db:"id"`
	ActivityID string    `json:"activity_id" db:"activity_id"`
	Name       string    `json:"name" db:"name"`
	State      string    `json:"state" db:"state"`
	AssignedTo string    `json:"assigned_to" db:"assigned_to"`
	StartDate  string    `json:"start_date" db:"start_date"`
	DueDate    string    `json:"due_date" db:"due_date"`
	HoursSpent float64   `json:"hours_spent" db:"hours_spent"`
	Percentage int       `json:"percentage" db:"percentage"`
	Notes      string    `json:"notes" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type CatalogItem struct {
	ID        string    `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"` // CatalogTypeState | CatalogTypeAssignee
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Name      string `json:"name" validate:"required"`
	Objective string `json:"objective" validate:"required"`
}

func (np *NewProject) Validate() error {
	np.Name = core.CleanString(np.Name)
	np.Objective = core.CleanString(np.Objective)
	return core.Validate.Struct(np)
}

// UpdateProject defines what may be modified on an existing Project.
// IsActive is only changed when set.
type UpdateProject struct {
	Name      string `json:"name" validate:"required"`
	Objective string `json:"objective" validate:"required"`
	IsActive  *bool  `json:"is_active"`
}

func (up *UpdateProject) Validate() error {
	up.Name = core.CleanString(up.Name)
	up.Objective = core.CleanString(up.Objective)
	return core.Validate.Struct(up)
}

// NewActivity contains information needed to create or overwrite an
// Activity. State and assignee are free text; the catalog is only a
// suggestion list.
type NewActivity struct {
	ProjectID  string `json:"project_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	State      string `json:"state"`
	AssignedTo string `json:"assigned_to"`
	StartDate  string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Percentage int    `json:"percentage" validate:"min=0,max=100"`
	Notes      string `json:"notes"`
}

func (na *NewActivity) Validate() error {
	na.ProjectID = core.CleanString(na.ProjectID)
	na.Name = core.CleanString(na.Name)
	na.State = core.CleanString(na.State)
	na.AssignedTo = core.CleanString(na.AssignedTo)
	na.StartDate = core.CleanString(na.StartDate)
	na.EndDate = core.CleanString(na.EndDate)
	return core.Validate.Struct(na)
}

// NewSubActivity contains information needed to create or overwrite a
// SubActivity.
type NewSubActivity struct {
	ActivityID string  `json:"activity_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	State      string  `json:"state"`
	AssignedTo string  `json:"assigned_to"`
	StartDate  string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate    string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	HoursSpent float64 `json:"hours_spent" validate:"min=0"`
	Percentage int     `json:"percentage" validate:"min=0,max=100"`
	Notes      string  `json:"notes"`
}

func (ns *NewSubActivity) Validate() error {
	ns.ActivityID = core.CleanString(ns.ActivityID)
	ns.Name = core.CleanString(ns.Name)
	ns.State = core.CleanString(ns.State)
	ns.AssignedTo = core.CleanString(ns.AssignedTo)
	ns.StartDate = core.CleanString(ns.StartDate)
	ns.DueDate = core.CleanString(ns.DueDate)
	return core.Validate.Struct(ns)
}

// NewCatalogItem contains information needed to create a CatalogItem.
type NewCatalogItem struct {
	Type string `json:"type" validate:"required,catalogtype"`
	Name string `json:"name" validate:"required"`
}

func (nc *NewCatalogItem) Validate() error {
	nc.Type = core.CleanString(nc.Type, true /* lower */)
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// UpdateCatalogItem renames an existing CatalogItem; the type tag is fixed
// at creation.
type UpdateCatalogItem struct {
	Name string `json:"name" validate:"required"`
}

func (uc *UpdateCatalogItem) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

// ActivityFilter applies an AND operation on its non-empty fields.
// ActivityFilter.Search does a case-insensitive match on Activity.Name or
// Activity.AssignedTo. The date bounds are inclusive and only compared
// when both the bound and the record's field are non-empty.
type ActivityFilter struct {
	Search     string `query:"search"`
	State      string `query:"state"`
	ProjectID  string `query:"project_id"`
	AssignedTo string `query:"assigned_to"`
	StartFrom  string `query:"start_from"` // YYYY-MM-DD
	EndTo      string `query:"end_to"`     // YYYY-MM-DD
}

func (f *ActivityFilter) IsEmpty() bool {
	return f.Search == "" && f.State == "" && f.ProjectID == "" &&
		f.AssignedTo == "" && f.StartFrom == "" && f.EndTo == ""
}

func (f *ActivityFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.State = core.CleanString(f.State)
	f.ProjectID = core.CleanString(f.ProjectID)
	f.AssignedTo = core.CleanString(f.AssignedTo)
	f.StartFrom = core.CleanString(f.StartFrom)
	f.EndTo = core.CleanString(f.EndTo)
}
