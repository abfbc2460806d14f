package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/teranga/client-registry/internal/core/domain"
	"github.com/teranga/client-registry/internal/core/ports"
)

// stubService records inputs and returns canned results.
type stubService struct {
	createInput ports.CreateClientInput
	createErr   error

	listInput  ports.ListClientsInput
	listResult *ports.ListClientsResult

	searchPhone  string
	searchResult *ports.ClientWithUser

	dettesResult *ports.DettesResult
}

func (s *stubService) Create(_ context.Context, input ports.CreateClientInput) (*ports.ClientResult, error) {
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &ports.ClientResult{ID: "c1", Telephone: input.Telephone}, nil
}

func (s *stubService) Get(_ context.Context, id string) (*ports.ClientWithUser, error) {
	if id == "missing" {
		return nil, domain.ErrClientNotFound
	}
	return &ports.ClientWithUser{Client: domain.Client{ID: id, Surnom: "Doe"}}, nil
}

func (s *stubService) SearchByPhone(_ context.Context, telephone string) (*ports.ClientWithUser, error) {
	s.searchPhone = telephone
	if s.searchResult == nil {
		return nil, domain.ErrClientNotFound
	}
	return s.searchResult, nil
}

func (s *stubService) List(_ context.Context, input ports.ListClientsInput) (*ports.ListClientsResult, error) {
	s.listInput = input
	return s.listResult, nil
}

func (s *stubService) Update(_ context.Context, id, surnom, adresse, telephone string) (*domain.Client, error) {
	return &domain.Client{ID: id, Surnom: surnom, Adresse: adresse, Telephone: telephone}, nil
}

func (s *stubService) Delete(_ context.Context, _ string) error { return nil }

func (s *stubService) ListDettes(_ context.Context, _ string) (*ports.DettesResult, error) {
	if s.dettesResult == nil {
		return nil, domain.ErrClientNotFound
	}
	return s.dettesResult, nil
}

func (s *stubService) GetAccount(_ context.Context, clientID string) (*domain.User, error) {
	return &domain.User{ID: "u1", ClientID: clientID, Email: "a@b.com"}, nil
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not json: %v (%s)", err, rec.Body.String())
	}
	return body
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreate_WithAccount(t *testing.T) {
	svc := &stubService{}
	h := NewClientHandler(svc)

	image := base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})
	payload := `{
		"surnom": "Doe",
		"adresse": "123 Rue Exemple",
		"telephone": "775933399",
		"users": {
			"email": "a@b.com",
			"password": "p@ssword123",
			"nom": "John",
			"prenom": "Doe",
			"image": "` + image + `"
		}
	}`

	c, rec := newTestContext(http.MethodPost, "/v1/clients", payload)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "client and user created successfully" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if body["success"] != true {
		t.Error("expected success envelope")
	}

	if svc.createInput.User == nil {
		t.Fatal("service must receive the account payload")
	}
	if svc.createInput.User.Image == nil || len(svc.createInput.User.Image.Data) != 4 {
		t.Error("service must receive the decoded image")
	}
}

func TestCreate_WithoutAccount(t *testing.T) {
	svc := &stubService{}
	h := NewClientHandler(svc)

	payload := `{"surnom": "Doe", "adresse": "123 Rue", "telephone": "775933399"}`
	c, rec := newTestContext(http.MethodPost, "/v1/clients", payload)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "client created successfully" {
		t.Errorf("unexpected message: %v", decodeBody(t, rec)["message"])
	}
	if svc.createInput.User != nil {
		t.Error("service must receive a nil account payload")
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	h := NewClientHandler(&stubService{})

	c, rec := newTestContext(http.MethodPost, "/v1/clients", `{"surnom": `)
	if err := h.Create(c); err != nil {
		t.Fatalf("bind failures respond directly, got error %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreate_AccountValidation(t *testing.T) {
	h := NewClientHandler(&stubService{})

	payload := `{
		"surnom": "Doe",
		"adresse": "123 Rue",
		"telephone": "775933399",
		"users": {"email": "not-an-email", "password": "short", "nom": "John", "prenom": ""}
	}`
	c, _ := newTestContext(http.MethodPost, "/v1/clients", payload)

	err := h.Create(c)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"users.email", "users.password", "users.prenom"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected error for %s, got %v", field, verr.Fields)
		}
	}
}

func TestCreate_ServiceErrorPropagates(t *testing.T) {
	svc := &stubService{createErr: domain.ErrEmailTaken}
	h := NewClientHandler(svc)

	payload := `{
		"surnom": "Doe", "adresse": "123 Rue", "telephone": "775933399",
		"users": {"email": "a@b.com", "password": "p@ssword123", "nom": "John", "prenom": "Doe"}
	}`
	c, _ := newTestContext(http.MethodPost, "/v1/clients", payload)

	if err := h.Create(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken to propagate, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestList_InvalidOuiNonFilter(t *testing.T) {
	h := NewClientHandler(&stubService{})

	for _, param := range []string{"comptes", "active"} {
		c, rec := newTestContext(http.MethodGet, "/v1/clients?"+param+"=maybe", "")
		if err := h.List(c); err != nil {
			t.Fatalf("filter errors respond directly, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s=maybe: expected 400, got %d", param, rec.Code)
		}
		body := decodeBody(t, rec)
		if !strings.Contains(body["message"].(string), param) {
			t.Errorf("message should name the parameter, got %v", body["message"])
		}
	}
}

func TestList_FiltersAndSortingForwarded(t *testing.T) {
	svc := &stubService{listResult: &ports.ListClientsResult{
		Items: []ports.ClientWithUser{{Client: domain.Client{ID: "c1"}}},
		Total: 1, Page: 2, Limit: 5, TotalPages: 1,
	}}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodGet,
		"/v1/clients?surnom=do&comptes=oui&active=non&sort_by=surnom&sort_order=desc&page=2", "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	in := svc.listInput
	if in.Surnom != "do" || in.Page != 2 {
		t.Errorf("unexpected input: %+v", in)
	}
	if in.HasAccount == nil || !*in.HasAccount {
		t.Error("comptes=oui must map to HasAccount=true")
	}
	if in.Active == nil || *in.Active {
		t.Error("active=non must map to Active=false")
	}
	if in.SortBy != "surnom" || !in.SortDesc {
		t.Errorf("sorting not forwarded: %+v", in)
	}
}

func TestList_UnknownSortIgnored(t *testing.T) {
	svc := &stubService{listResult: &ports.ListClientsResult{
		Items: []ports.ClientWithUser{{Client: domain.Client{ID: "c1"}}},
		Total: 1, Page: 1, Limit: 5, TotalPages: 1,
	}}
	h := NewClientHandler(svc)

	c, _ := newTestContext(http.MethodGet, "/v1/clients?sort_by=password", "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.listInput.SortBy != "" {
		t.Errorf("unknown sort column must be ignored, got %q", svc.listInput.SortBy)
	}
}

func TestList_EmptyIs404(t *testing.T) {
	svc := &stubService{listResult: &ports.ListClientsResult{Total: 0, Page: 1, Limit: 5}}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/v1/clients", "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "no clients found" {
		t.Errorf("unexpected message: %v", decodeBody(t, rec)["message"])
	}
}

func TestList_RendersPagination(t *testing.T) {
	svc := &stubService{listResult: &ports.ListClientsResult{
		Items: []ports.ClientWithUser{
			{Client: domain.Client{ID: "c1", Surnom: "Doe"}},
			{Client: domain.Client{ID: "c2", Surnom: "Roe"}, User: &domain.User{ID: "u2", Email: "r@e.com"}},
		},
		Total: 12, Page: 1, Limit: 5, TotalPages: 3,
	}}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/v1/clients", "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	clients := data["clients"].([]any)
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	pagination := data["pagination"].(map[string]any)
	if pagination["total"].(float64) != 12 || pagination["total_pages"].(float64) != 3 {
		t.Errorf("unexpected pagination: %v", pagination)
	}
	second := clients[1].(map[string]any)
	if second["user"] == nil {
		t.Error("linked user must be rendered")
	}
}

// ---------------------------------------------------------------------------
// Other endpoints
// ---------------------------------------------------------------------------

func TestSearchByPhone(t *testing.T) {
	svc := &stubService{searchResult: &ports.ClientWithUser{
		Client: domain.Client{ID: "c1", Telephone: "775933399"},
	}}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/v1/clients/telephone", `{"telephone": "775933399"}`)
	if err := h.SearchByPhone(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.searchPhone != "775933399" {
		t.Errorf("telephone not forwarded: %q", svc.searchPhone)
	}
}

func TestSearchByPhone_NotFoundPropagates(t *testing.T) {
	h := NewClientHandler(&stubService{})

	c, _ := newTestContext(http.MethodPost, "/v1/clients/telephone", `{"telephone": "000"}`)
	if err := h.SearchByPhone(c); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestListDettes_EmptyHasNullData(t *testing.T) {
	svc := &stubService{dettesResult: &ports.DettesResult{Client: domain.Client{ID: "c1"}}}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/v1/clients/c1/dettes", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.ListDettes(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("a debt-free client is a success, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["data"] != nil {
		t.Errorf("expected null data, got %v", body["data"])
	}
	if body["message"] != "client found, no debts" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestListDettes_WithDebts(t *testing.T) {
	svc := &stubService{dettesResult: &ports.DettesResult{
		Client: domain.Client{ID: "c1"},
		Dettes: []domain.Dette{{ID: "d1", ClientID: "c1", Montant: 1000, MontantRestant: 400}},
	}}
	h := NewClientHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/v1/clients/c1/dettes", "")
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.ListDettes(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := decodeBody(t, rec)["data"].(map[string]any)
	dettes := data["dettes"].([]any)
	if len(dettes) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(dettes))
	}
}

func TestGet_NotFoundPropagates(t *testing.T) {
	h := NewClientHandler(&stubService{})

	c, _ := newTestContext(http.MethodGet, "/v1/clients/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Get(c); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	h := NewClientHandler(&stubService{})

	c, rec := newTestContext(http.MethodPut, "/v1/clients/c1",
		`{"surnom": "Doe", "adresse": "456 Rue", "telephone": "770000000"}`)
	c.SetParamNames("id")
	c.SetParamValues("c1")
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestDecodeImage(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	plain := base64.StdEncoding.EncodeToString(raw)

	if got := decodeImage(plain); got == nil || len(got.Data) != 4 {
		t.Error("plain base64 must decode")
	}
	if got := decodeImage("data:image/png;base64," + plain); got == nil || len(got.Data) != 4 {
		t.Error("data-url payload must decode")
	}
	if decodeImage("") != nil {
		t.Error("empty payload must yield nil")
	}
	if decodeImage("!!! not base64 !!!") != nil {
		t.Error("invalid payload must yield nil, not an error")
	}
}

func TestPageParam(t *testing.T) {
	for query, want := range map[string]int{
		"":         1,
		"page=0":   1,
		"page=-3":  1,
		"page=abc": 1,
		"page=7":   7,
	} {
		c, _ := newTestContext(http.MethodGet, "/v1/clients?"+query, "")
		if got := pageParam(c); got != want {
			t.Errorf("query %q: expected %d, got %d", query, want, got)
		}
	}
}
