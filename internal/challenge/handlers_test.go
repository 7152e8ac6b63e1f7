package challenge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func passthrough(c *fiber.Ctx) error { return c.Next() }

func TestChallengeHandlersJoinAndList(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/challenges"), NewService(mock, nil, nil), passthrough)

	mock.ExpectQuery(`INSERT INTO challenge_participations`).
		WithArgs("ch-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"progress", "completed_at", "joined_at"}).AddRow(0.0, nil, time.Now()))

	body, _ := json.Marshal(map[string]string{"user_id": "user-1"})
	req := httptest.NewRequest(http.MethodPost, "/challenges/ch-1/join", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("join status: %v", err)
	}

	mock.ExpectQuery(`FROM challenge_participations`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"challenge_id", "user_id", "progress", "completed_at", "joined_at"}).
			AddRow("ch-1", "user-1", 0.0, nil, time.Now()))

	req = httptest.NewRequest(http.MethodGet, "/challenges/users/user-1", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}
}

func TestChallengeHandlersJoinBadRequest(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/challenges"), NewService(nil, nil, nil), passthrough)

	req := httptest.NewRequest(http.MethodPost, "/challenges/ch-1/join", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}
