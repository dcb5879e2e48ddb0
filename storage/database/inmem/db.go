// Package inmem provides in-memory implementations of the data access
// contracts. It backs tests and serves as the local fallback store when
// the database is unreachable.
package inmem

import (
	"strconv"
	"sync"
	"time"

	"github.com/trezcool/progim/core/alert"
	"github.com/trezcool/progim/core/tracking"
	"github.com/trezcool/progim/core/user"
)

// DB holds all entity sets behind a single lock. Slices are kept newest
// first so list operations return them as is.
type DB struct {
	mu sync.RWMutex

	projects      []tracking.Project
	activities    []tracking.Activity
	subActivities []tracking.SubActivity
	catalogs      []tracking.CatalogItem

	users       []user.User
	assignments []user.Assignment

	alertConfig *alert.Config
	alertLog    []alert.LogEntry
}

func Open() *DB {
	return &DB{}
}

// OpenSeeded returns a DB preloaded with the starter dataset so the
// dashboard is usable before anything has been created.
func OpenSeeded() (*DB, error) {
	db := Open()
	if err := db.seed(); err != nil {
		return nil, err
	}
	return db, nil
}

// Reset drops everything and reloads the starter dataset.
func (db *DB) Reset() error {
	db.mu.Lock()
	db.projects, db.activities, db.subActivities, db.catalogs = nil, nil, nil, nil
	db.users, db.assignments = nil, nil
	db.alertConfig, db.alertLog = nil, nil
	db.mu.Unlock()
	return db.seed()
}

// newID synthesizes an id from the current time, matching the ids the
// stores generate for records created while offline.
func newID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

func seedTime(val string) time.Time {
	t, _ := time.Parse(time.RFC3339, val)
	return t
}

func (db *DB) seed() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.projects = []tracking.Project{
		{ID: "3", Name: "Capacitación Digital", Objective: "Programa de capacitación en herramientas digitales para el equipo", IsActive: false, CreatedAt: seedTime("2024-12-15T00:00:00Z")},
		{ID: "2", Name: "Dashboard Ejecutivo", Objective: "Tablero de control para seguimiento de KPIs y métricas de rendimiento", IsActive: true, CreatedAt: seedTime("2025-01-02T00:00:00Z")},
		{ID: "1", Name: "Proyecto MEL 2025", Objective: "Sistema de Monitoreo, Evaluación y Aprendizaje para mejorar la gestión de proyectos", IsActive: true, CreatedAt: seedTime("2025-01-01T00:00:00Z")},
	}

	db.activities = []tracking.Activity{
		{ID: "1", ProjectID: "1", Name: "Desarrollo del Sistema MEL", State: "En Progreso", AssignedTo: "Equipo Técnico", StartDate: "2025-01-01", EndDate: "2025-03-01", Percentage: 75, Notes: "Avance según cronograma establecido.", DaysElapsed: 30, CreatedAt: seedTime("2025-01-01T00:00:00Z")},
		{ID: "2", ProjectID: "1", Name: "Capacitación de Usuarios", State: "Planificado", AssignedTo: "Equipo de Capacitación", StartDate: "2025-02-15", EndDate: "2025-02-28", Percentage: 0, Notes: "Pendiente de inicio. Materiales en preparación.", DaysElapsed: 0, CreatedAt: seedTime("2025-01-01T00:00:00Z")},
		{ID: "3", ProjectID: "2", Name: "Implementación Dashboard", State: "Completado", AssignedTo: "Alex Engineer", StartDate: "2025-01-01", EndDate: "2025-01-15", Percentage: 100, Notes: "Completado exitosamente.", DaysElapsed: 15, CreatedAt: seedTime("2025-01-02T00:00:00Z")},
		{ID: "4", ProjectID: "2", Name: "Testing y QA", State: "En Progreso", AssignedTo: "Equipo QA", StartDate: "2025-01-10", EndDate: "2025-01-25", Percentage: 60, Notes: "Pruebas en curso.", DaysElapsed: 20, CreatedAt: seedTime("2025-01-02T00:00:00Z")},
		{ID: "5", ProjectID: "1", Name: "Documentación Técnica", State: "Atrasado", AssignedTo: "Equipo Técnico", StartDate: "2024-12-01", EndDate: "2024-12-31", Percentage: 40, Notes: "Requiere atención urgente.", DaysElapsed: 60, CreatedAt: seedTime("2024-12-01T00:00:00Z")},
	}

	states := []string{"En Progreso", "Completado", "Planificado", "Atrasado", "Cancelado"}
	assignees := []string{"Equipo Técnico", "Alex Engineer", "Equipo de Capacitación", "Equipo QA", "Gerencia"}
	id := 1
	for _, name := range states {
		db.catalogs = append(db.catalogs, tracking.CatalogItem{
			ID: strconv.Itoa(id), Type: tracking.CatalogTypeState, Name: name, CreatedAt: seedTime("2025-01-01T00:00:00Z"),
		})
		id++
	}
	for _, name := range assignees {
		db.catalogs = append(db.catalogs, tracking.CatalogItem{
			ID: strconv.Itoa(id), Type: tracking.CatalogTypeAssignee, Name: name, CreatedAt: seedTime("2025-01-01T00:00:00Z"),
		})
		id++
	}

	seedUsers := []struct {
		id, username, fullName, role, password string
	}{
		{"1", "Monitoreo", "Sistema de Monitoreo", user.RoleUser, "Me2025"},
		{"2", "admin", "Administrador", user.RoleAdmin, "admin123"},
	}
	for _, su := range seedUsers {
		usr := user.User{
			ID:        su.id,
			Username:  su.username,
			FullName:  su.fullName,
			Role:      su.role,
			CreatedAt: seedTime("2025-01-01T00:00:00Z"),
		}
		if err := usr.SetPassword(su.password); err != nil {
			return err
		}
		db.users = append(db.users, usr)
	}
	return nil
}
