package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/trezcool/progim/core/tracking"
)

func seededActivities(t *testing.T) map[string]tracking.Activity {
	t.Helper()
	activities, err := trackSvc.Activities(context.Background())
	if err != nil {
		t.Fatalf("Activities(): %v", err)
	}
	byID := make(map[string]tracking.Activity, len(activities))
	for _, a := range activities {
		byID[a.ID] = a
	}
	return byID
}

func Test_trackingApi_projects(t *testing.T) {
	resetDB(t)

	token := getToken(t, getUser(t, "Monitoreo"))

	t.Run("auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/projects")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("list seeded", func(t *testing.T) {
		projects, err := trackSvc.Projects(context.Background())
		if err != nil {
			t.Fatalf("Projects(): %v", err)
		}
		if len(projects) != 3 {
			t.Fatalf("seeded %d projects, want 3", len(projects))
		}
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, projects)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/projects", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("create requires name and objective", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "objective": "this field is required"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/projects", token, marchallObj(t, tracking.NewProject{}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, tracking.NewProject{Name: "Evaluación Anual", Objective: "Consolidar resultados del año"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/projects", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var project tracking.Project
		if err := json.Unmarshal(rec.Body.Bytes(), &project); err != nil {
			t.Fatalf("unmarshalling Project: %v", err)
		}
		if project.ID == "" || !project.IsActive || project.Name != "Evaluación Anual" {
			t.Errorf("unexpected created project: %+v", project)
		}

		// newest first
		req, rec = newAuthRequest(http.MethodGet, "/v1/projects", token)
		app.ServeHTTP(rec, req)
		var projects []tracking.Project
		if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
			t.Fatalf("unmarshalling []Project: %v", err)
		}
		if len(projects) != 4 || projects[0].ID != project.ID {
			t.Errorf("created project is not listed first: %+v", projects)
		}
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, tracking.UpdateProject{Name: "Proyecto MEL 2025-2026", Objective: "Extender el alcance del sistema"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/projects/1", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}

		var project tracking.Project
		if err := json.Unmarshal(rec.Body.Bytes(), &project); err != nil {
			t.Fatalf("unmarshalling Project: %v", err)
		}
		if project.Name != "Proyecto MEL 2025-2026" {
			t.Errorf("Name = %q, want the updated name", project.Name)
		}
		if !project.IsActive {
			t.Error("IsActive flipped although it was not part of the update")
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		body := marchallObj(t, tracking.UpdateProject{Name: "X", Objective: "Y"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/projects/999", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			req, rec := newAuthRequest(http.MethodDelete, "/v1/projects/3", token)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
			}
		}
	})
}

func Test_trackingApi_activityQuery(t *testing.T) {
	resetDB(t)

	token := getToken(t, getUser(t, "Monitoreo"))
	byID := seededActivities(t)
	if len(byID) != 5 {
		t.Fatalf("seeded %d activities, want 5", len(byID))
	}

	path := func(params map[string]string) string {
		v := make(url.Values)
		for key, val := range params {
			v.Add(key, val)
		}
		return "/v1/activities?" + v.Encode()
	}
	want := func(ids ...string) []byte {
		objs := make([]interface{}, 0, len(ids))
		for _, id := range ids {
			objs = append(objs, byID[id])
		}
		return marchallList(t, objs...)
	}

	tests := []httpTest{
		{name: "all (stored order)", path: "/v1/activities", wantData: want("1", "2", "3", "4", "5")},
		{name: "state", path: path(map[string]string{"state": "En Progreso"}), wantData: want("1", "4")},
		{name: "state (unknown)", path: path(map[string]string{"state": "lol"}), wantData: want()},
		{name: "project", path: path(map[string]string{"project_id": "2"}), wantData: want("3", "4")},
		{name: "search matches assignee", path: path(map[string]string{"search": "equipo"}), wantData: want("1", "2", "4", "5")},
		{name: "search matches name", path: path(map[string]string{"search": "dashboard"}), wantData: want("3")},
		{name: "assigned_to", path: path(map[string]string{"assigned_to": "Equipo Técnico"}), wantData: want("1", "5")},
		{name: "start_from", path: path(map[string]string{"start_from": "2025-01-01"}), wantData: want("1", "2", "3", "4")},
		{name: "end_to", path: path(map[string]string{"end_to": "2025-01-31"}), wantData: want("3", "4", "5")},
		{name: "combo", path: path(map[string]string{"state": "En Progreso", "end_to": "2025-01-31"}), wantData: want("4")},
		// ordering
		{name: "order by name", path: path(map[string]string{"ordering": "name"}), wantData: want("2", "1", "5", "3", "4")},
		{name: "order by -percentage", path: path(map[string]string{"ordering": "-percentage"}), wantData: want("3", "1", "4", "5", "2")},
		{
			name: "order by state,-percentage", path: path(map[string]string{"ordering": "state,-percentage"}),
			wantData: want("5", "3", "1", "4", "2"),
		},
		// filtering & ordering
		{
			name: "filter and order", path: path(map[string]string{"search": "equipo", "ordering": "percentage"}),
			wantData: want("2", "5", "4", "1"),
		},
	}
	for _, tt := range tests {
		tt.wantCode = http.StatusOK
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_trackingApi_activityCRUD(t *testing.T) {
	resetDB(t)

	token := getToken(t, getUser(t, "Monitoreo"))

	t.Run("create validates dates", func(t *testing.T) {
		body := marchallObj(t, tracking.NewActivity{ProjectID: "1", Name: "X", StartDate: "01/02/2025"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/activities", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %v", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	var created tracking.Activity
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, tracking.NewActivity{
			ProjectID: "1", Name: "Línea de Base", State: "En Progreso", AssignedTo: "Equipo MEL",
			StartDate: "2025-01-05", EndDate: "2025-02-05", Percentage: 20, Notes: "Recolección en campo.",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/activities", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling Activity: %v", err)
		}
		if created.ID == "" || created.DaysElapsed <= 0 {
			t.Errorf("unexpected created activity: %+v", created)
		}
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, tracking.NewActivity{
			ProjectID: "1", Name: "Línea de Base", State: "Completado", AssignedTo: "Equipo MEL",
			StartDate: "2025-01-05", EndDate: "2025-02-05", Percentage: 100,
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/activities/"+created.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}

		var updated tracking.Activity
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling Activity: %v", err)
		}
		if updated.State != "Completado" || updated.Percentage != 100 {
			t.Errorf("unexpected updated activity: %+v", updated)
		}
		if updated.DaysElapsed != 0 {
			t.Errorf("DaysElapsed = %d, want 0 once completed", updated.DaysElapsed)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		body := marchallObj(t, tracking.NewActivity{ProjectID: "1", Name: "X"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/activities/999", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/activities/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}

func Test_trackingApi_subActivities(t *testing.T) {
	resetDB(t)

	token := getToken(t, getUser(t, "Monitoreo"))

	t.Run("empty by default", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/sub-activities", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	var created tracking.SubActivity
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, tracking.NewSubActivity{
			ActivityID: "1", Name: "Diseño de Indicadores", State: "En Progreso",
			AssignedTo: "Alex Engineer", StartDate: "2025-01-10", DueDate: "2025-01-20",
			HoursSpent: 6.5, Percentage: 50,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/sub-activities", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling SubActivity: %v", err)
		}
		if created.ID == "" || created.HoursSpent != 6.5 {
			t.Errorf("unexpected created sub-activity: %+v", created)
		}
	})

	t.Run("list by activity", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, created)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/sub-activities?activity_id=1", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		tt = httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}
		req, rec = newAuthRequest(http.MethodGet, "/v1/sub-activities?activity_id=999", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update unknown id", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		body := marchallObj(t, tracking.NewSubActivity{ActivityID: "1", Name: "X"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/sub-activities/999", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/sub-activities/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}

func Test_trackingApi_catalogs(t *testing.T) {
	resetDB(t)

	token := getToken(t, getUser(t, "Monitoreo"))

	t.Run("list seeded", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/catalogs", token)
		app.ServeHTTP(rec, req)
		var items []tracking.CatalogItem
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("unmarshalling []CatalogItem: %v", err)
		}
		if len(items) != 10 {
			t.Errorf("seeded %d catalog items, want 10", len(items))
		}
	})

	t.Run("list by type", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/catalogs?type=state", token)
		app.ServeHTTP(rec, req)
		var items []tracking.CatalogItem
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("unmarshalling []CatalogItem: %v", err)
		}
		if len(items) != 5 {
			t.Errorf("got %d state items, want 5", len(items))
		}
		for _, item := range items {
			if item.Type != tracking.CatalogTypeState {
				t.Errorf("item %+v leaked into type=state listing", item)
			}
		}
	})

	t.Run("create rejects unknown type", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": "must be one of 'state' or 'assignee'"}),
		}
		body := marchallObj(t, tracking.NewCatalogItem{Type: "color", Name: "Rojo"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/catalogs", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	var created tracking.CatalogItem
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, tracking.NewCatalogItem{Type: "Assignee", Name: "Consultores Externos"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/catalogs", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling CatalogItem: %v", err)
		}
		if created.Type != tracking.CatalogTypeAssignee {
			t.Errorf("Type = %q, want the lowered type tag", created.Type)
		}
	})

	t.Run("rename", func(t *testing.T) {
		body := marchallObj(t, tracking.UpdateCatalogItem{Name: "Consultoría Externa"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/catalogs/"+created.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %v", rec.Code, http.StatusOK, rec.Body.String())
		}

		var item tracking.CatalogItem
		if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
			t.Fatalf("unmarshalling CatalogItem: %v", err)
		}
		if item.Name != "Consultoría Externa" || item.Type != created.Type {
			t.Errorf("unexpected renamed item: %+v", item)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/catalogs/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}

func Test_trackingApi_progress(t *testing.T) {
	resetDB(t)

	token := getToken(t, getUser(t, "Monitoreo"))

	tests := []httpTest{
		{
			name: "all activities", path: "/v1/activities/progress",
			wantData: marchallObj(t, tracking.ProgressSummary{Percentage: 55, TotalActivities: 5, CompletedActivities: 1}),
		},
		{
			name: "filtered by project", path: "/v1/activities/progress?project_id=2",
			wantData: marchallObj(t, tracking.ProgressSummary{Percentage: 80, TotalActivities: 2, CompletedActivities: 1}),
		},
		{
			name: "no match", path: "/v1/activities/progress?state=lol",
			wantData: marchallObj(t, tracking.ProgressSummary{}),
		},
	}
	for _, tt := range tests {
		tt.wantCode = http.StatusOK
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
