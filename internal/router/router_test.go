package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-census/internal/router"
)

func TestHTTP_EndToEnd_SurveyWithAnimals(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	adminID := "admin-1"
	userID := "user-1"
	strangerID := "user-2"

	// 1) Admin crea ciudad con una pregunta obligatoria y una opcional
	cityID := createCity(t, ts.URL, adminID, map[string]any{
		"name":   "La Plata",
		"year":   2026,
		"region": "Buenos Aires",
	})
	requiredQID := createQuestion(t, ts.URL, adminID, cityID, "¿Cuántos animales callejeros ve por semana?", true)
	_ = createQuestion(t, ts.URL, adminID, cityID, "Comentarios adicionales", false)

	// 2) Usuario sin rol admin NO puede crear ciudades
	{
		st, _ := doReq(t, ts.URL, "POST", "/cities", userID, "", map[string]any{
			"name": "Rosario",
			"year": 2026,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 create city as plain user, got %d", st)
		}
	}

	// 3) Usuario crea formulario
	formID := createForm(t, ts.URL, userID, cityID)

	// 4) Otro usuario no lo puede ver
	{
		st, _ := doReq(t, ts.URL, "GET", "/forms/"+formID, strangerID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 get form by stranger, got %d", st)
		}
	}

	// 5) El dueño completa los campos básicos; declara tener animales
	{
		st, body := doReq(t, ts.URL, "PATCH", "/forms/"+formID, userID, "", map[string]any{
			"interviewer_name": "Carla Moreno",
			"interview_date":   "2026-03-10",
			"interview_status": "completed",
			"education_level":  "secondary",
			"housing_type":     "house",
			"has_dogs_cats":    true,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch form, got %d body=%s", st, string(body))
		}
	}

	// 6) El paso de ausencia está bloqueado cuando el hogar tiene animales
	{
		st, _ := doReq(t, ts.URL, "POST", "/forms/"+formID+"/step", userID, "", map[string]any{"step": 7})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 advancing to absence step, got %d", st)
		}
	}

	// 7) Los pasos de animales sí son alcanzables
	advanceStep(t, ts.URL, userID, formID, 4)

	// 8) Registra dos animales actuales; el orden se asigna denso
	ageYears := 3
	animal1 := createAnimal(t, ts.URL, userID, formID, "current", map[string]any{
		"species":            "dog",
		"sex":                "male",
		"breed":              "mixed",
		"age_years":          ageYears,
		"castration_status":  "castrated",
		"vaccination_status": "complete",
		"acquisition":        "adopted",
		"name":               "Rocco",
	})
	createAnimal(t, ts.URL, userID, formID, "current", map[string]any{
		"species":    "cat",
		"sex":        "female",
		"age_months": 8,
	})

	{
		st, body := doReq(t, ts.URL, "GET", "/forms/"+formID+"/animals?kind=current", userID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list animals, got %d body=%s", st, string(body))
		}
		var list []struct {
			ID                string `json:"id"`
			RegistrationOrder int    `json:"registration_order"`
		}
		_ = json.Unmarshal(body, &list)
		if len(list) != 2 {
			t.Fatalf("expected 2 current animals, got %d", len(list))
		}
		if list[0].RegistrationOrder != 1 || list[1].RegistrationOrder != 2 {
			t.Fatalf("expected dense orders 1,2, got %d,%d", list[0].RegistrationOrder, list[1].RegistrationOrder)
		}
	}

	// 9) Edad inválida (ambas formas) => 400 con errores por campo
	{
		st, body := doReq(t, ts.URL, "POST", "/forms/"+formID+"/animals?kind=current", userID, "", map[string]any{
			"species":    "dog",
			"age_months": 6,
			"age_years":  2,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for conflicting ages, got %d body=%s", st, string(body))
		}
	}

	// 10) Camada: PUT es upsert, dos veces deja un solo registro
	{
		st, body := doReq(t, ts.URL, "PUT", "/forms/"+formID+"/litter", userID, "", map[string]any{
			"species":  "dog",
			"born":     5,
			"survived": 4,
			"died":     1,
			"kept":     2,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 upsert litter, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "PUT", "/forms/"+formID+"/litter", userID, "", map[string]any{
			"species":  "dog",
			"born":     6,
			"survived": 6,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 second upsert litter, got %d body=%s", st, string(body))
		}
		var lit struct {
			Born int `json:"born"`
		}
		_ = json.Unmarshal(body, &lit)
		if lit.Born != 6 {
			t.Fatalf("expected litter overwritten with born=6, got %d", lit.Born)
		}
	}

	// 11) El checklist reporta la pregunta obligatoria sin responder
	{
		result := validateForm(t, ts.URL, userID, formID)
		if result.IsValid {
			t.Fatal("expected invalid form while required question unanswered")
		}
		if !containsField(result.MissingFields, "question:"+requiredQID) {
			t.Fatalf("expected missing question:%s, got %v", requiredQID, result.MissingFields)
		}
	}

	// 12) Completar fuera del último paso => 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/forms/"+formID+"/complete", userID, "", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 complete before last step, got %d", st)
		}
	}

	advanceStep(t, ts.URL, userID, formID, 8)

	// 13) Aún falta la pregunta obligatoria
	{
		st, _ := doReq(t, ts.URL, "POST", "/forms/"+formID+"/complete", userID, "", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 complete with missing question, got %d", st)
		}
	}

	// 14) Responde la pregunta y completa
	{
		st, body := doReq(t, ts.URL, "PUT", "/forms/"+formID+"/responses/"+requiredQID, userID, "", map[string]any{
			"text": "unos cinco por semana",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 upsert response, got %d body=%s", st, string(body))
		}
	}
	{
		result := validateForm(t, ts.URL, userID, formID)
		if !result.IsValid {
			t.Fatalf("expected valid form, missing %v", result.MissingFields)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/forms/"+formID+"/complete", userID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 complete, got %d body=%s", st, string(body))
		}
		var f struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &f)
		if f.Status != "completed" {
			t.Fatalf("expected status completed, got %s", f.Status)
		}
	}

	// 15) Submit cierra el formulario
	{
		st, body := doReq(t, ts.URL, "POST", "/forms/"+formID+"/submit", userID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 submit, got %d body=%s", st, string(body))
		}
		var f struct {
			Status      string  `json:"status"`
			SubmittedAt *string `json:"submitted_at"`
		}
		_ = json.Unmarshal(body, &f)
		if f.Status != "submitted" || f.SubmittedAt == nil {
			t.Fatalf("expected submitted with timestamp, got %+v", f)
		}
	}

	// 16) Submitted es terminal: ni el formulario ni sus hijos se tocan
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/forms/"+formID, userID, "", map[string]any{
			"address": "Calle 7 n. 1234",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 patch after submit, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/forms/"+formID+"/animals?kind=current", userID, "", map[string]any{
			"species":   "dog",
			"age_years": 1,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 create animal after submit, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/forms/"+formID+"/animals/"+animal1, userID, "", map[string]any{
			"name": "Rocco II",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 patch animal after submit, got %d", st)
		}
	}

	// 17) El read model completo sigue disponible en lectura
	{
		st, body := doReq(t, ts.URL, "GET", "/forms/"+formID+"/full", userID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 full form, got %d body=%s", st, string(body))
		}
		var full struct {
			Form struct {
				Status string `json:"status"`
			} `json:"form"`
			CurrentAnimals  []json.RawMessage `json:"current_animals"`
			PreviousAnimals []json.RawMessage `json:"previous_animals"`
			Litter          *json.RawMessage  `json:"litter"`
			Absence         *json.RawMessage  `json:"absence"`
			Responses       []json.RawMessage `json:"responses"`
		}
		if err := json.Unmarshal(body, &full); err != nil {
			t.Fatalf("unmarshal full view: %v", err)
		}
		if full.Form.Status != "submitted" {
			t.Fatalf("expected submitted form in full view, got %s", full.Form.Status)
		}
		if len(full.CurrentAnimals) != 2 || len(full.PreviousAnimals) != 0 {
			t.Fatalf("expected 2 current / 0 previous animals, got %d/%d",
				len(full.CurrentAnimals), len(full.PreviousAnimals))
		}
		if full.Litter == nil {
			t.Fatal("expected litter present in full view")
		}
		if full.Absence != nil {
			t.Fatal("expected no absence record in full view")
		}
		if len(full.Responses) != 1 {
			t.Fatalf("expected 1 response, got %d", len(full.Responses))
		}
	}
}

func TestHTTP_AbsenceFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	adminID := "admin-1"
	userID := "user-1"

	cityID := createCity(t, ts.URL, adminID, map[string]any{
		"name": "Córdoba",
		"year": 2026,
	})
	formID := createForm(t, ts.URL, userID, cityID)

	{
		st, body := doReq(t, ts.URL, "PATCH", "/forms/"+formID, userID, "", map[string]any{
			"has_dogs_cats": false,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch form, got %d body=%s", st, string(body))
		}
	}

	// Sin animales los pasos de animales están bloqueados, la ausencia no
	{
		st, _ := doReq(t, ts.URL, "POST", "/forms/"+formID+"/step", userID, "", map[string]any{"step": 4})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 advancing to animal step without animals, got %d", st)
		}
	}
	advanceStep(t, ts.URL, userID, formID, 7)

	{
		st, body := doReq(t, ts.URL, "PUT", "/forms/"+formID+"/absence", userID, "", map[string]any{
			"would_acquire": "maybe",
			"reasons":       []string{"cost", "no_time"},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 upsert absence, got %d body=%s", st, string(body))
		}
	}

	// Motivos repetidos => 400
	{
		st, _ := doReq(t, ts.URL, "PUT", "/forms/"+formID+"/absence", userID, "", map[string]any{
			"would_acquire": "no",
			"reasons":       []string{"cost", "cost"},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for duplicate reasons, got %d", st)
		}
	}

	// Sin claims no hay acceso
	{
		st, _ := doReq(t, ts.URL, "GET", "/forms/"+formID, "", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without credentials, got %d", st)
		}
	}
}

func TestHTTP_CityScopedAdmin(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	globalAdmin := "admin-1"
	cityID := createCity(t, ts.URL, globalAdmin, map[string]any{
		"name": "Mendoza",
		"year": 2026,
	})
	otherCityID := createCity(t, ts.URL, globalAdmin, map[string]any{
		"name": "Salta",
		"year": 2026,
	})

	// Admin con scope solo sobre Mendoza
	scopedAdmin := "admin-2"
	{
		st, _ := doReqScoped(t, ts.URL, "POST", "/cities/"+cityID+"/questions", scopedAdmin, "admin", cityID, map[string]any{
			"text":     "¿Vacunó a sus animales este año?",
			"required": true,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 question in scoped city, got %d", st)
		}
	}
	{
		st, _ := doReqScoped(t, ts.URL, "POST", "/cities/"+otherCityID+"/questions", scopedAdmin, "admin", cityID, map[string]any{
			"text":     "Pregunta fuera de scope",
			"required": false,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 question outside scope, got %d", st)
		}
	}

	// (name, year) es único
	{
		st, _ := doReq(t, ts.URL, "POST", "/cities", globalAdmin, "admin", map[string]any{
			"name": "Mendoza",
			"year": 2026,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate city, got %d", st)
		}
	}
}

func createCity(t *testing.T, baseURL, adminID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/cities", adminID, "admin", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create city, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create city: missing id body=%s", string(body))
	}
	return resp.ID
}

func createQuestion(t *testing.T, baseURL, adminID, cityID, text string, required bool) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/cities/"+cityID+"/questions", adminID, "admin", map[string]any{
		"text":     text,
		"required": required,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create question, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create question: missing id body=%s", string(body))
	}
	return resp.ID
}

func createForm(t *testing.T, baseURL, userID, cityID string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/forms", userID, "", map[string]any{
		"city_id": cityID,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create form, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		CurrentStep int    `json:"current_step"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create form: missing id body=%s", string(body))
	}
	if resp.Status != "draft" || resp.CurrentStep != 1 {
		t.Fatalf("expected draft form at step 1, got %s/%d", resp.Status, resp.CurrentStep)
	}
	return resp.ID
}

func createAnimal(t *testing.T, baseURL, userID, formID, kind string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/forms/"+formID+"/animals?kind="+kind, userID, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create animal, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create animal: missing id body=%s", string(body))
	}
	return resp.ID
}

func advanceStep(t *testing.T, baseURL, userID, formID string, step int) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/forms/"+formID+"/step", userID, "", map[string]any{"step": step})
	if st != http.StatusOK {
		t.Fatalf("expected 200 advancing to step %d, got %d body=%s", step, st, string(body))
	}
}

type validationResult struct {
	IsValid       bool     `json:"is_valid"`
	MissingFields []string `json:"missing_fields"`
}

func validateForm(t *testing.T, baseURL, userID, formID string) validationResult {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/forms/"+formID+"/validate", userID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 validate, got %d body=%s", st, string(body))
	}

	var result validationResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("unmarshal validation result: %v", err)
	}
	return result
}

func containsField(fields []string, want string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == want {
			return true
		}
	}
	return false
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()
	return doReqScoped(t, baseURL, method, path, debugUserID, debugRole, "", body)
}

func doReqScoped(t *testing.T, baseURL, method, path, debugUserID, debugRole, debugCityIDs string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if debugRole != "" {
		req.Header.Set("X-Debug-Role", debugRole)
	}
	if debugCityIDs != "" {
		req.Header.Set("X-Debug-City-IDs", debugCityIDs)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
