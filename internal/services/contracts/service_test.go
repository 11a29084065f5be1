package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/client"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage/memory"
)

func seedClient(t *testing.T, store *memory.Store) client.Client {
	t.Helper()
	c, err := store.CreateClient(context.Background(), client.Client{
		FirstName:     "Joe",
		LastName:      "Client",
		HireDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		AddressStreet: "12 Main St",
		City:          "Springfield",
		State:         "IL",
		ZIPCode:       "62701",
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func TestService(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()
	c := seedClient(t, store)

	if err := svc.Add(ctx, c.ID, "2024-02-01", "2025-02-01", decimal.NewFromInt(5000)); err != nil {
		t.Fatalf("add contract: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list contracts: %v", err)
	}
	if len(list) != 1 || list[0].ClientName != "Joe Client" {
		t.Fatalf("unexpected list %+v", list)
	}

	total, err := svc.TotalPayment(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("total payment: %v", err)
	}
	if !total.Equal(decimal.Zero) {
		t.Fatalf("expected zero total, got %s", total)
	}

	if err := svc.Delete(ctx, list[0].ID); err != nil {
		t.Fatalf("delete contract: %v", err)
	}
	list, _ = svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %+v", list)
	}
}

func TestService_AddValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()
	c := seedClient(t, store)

	cases := []struct {
		name      string
		clientID  int64
		start     string
		end       string
		amount    decimal.Decimal
	}{
		{"zero client id", 0, "2024-02-01", "2025-02-01", decimal.NewFromInt(5000)},
		{"zero amount", c.ID, "2024-02-01", "2025-02-01", decimal.Zero},
		{"negative amount", c.ID, "2024-02-01", "2025-02-01", decimal.NewFromInt(-1)},
		{"bad start date", c.ID, "02/01/2024", "2025-02-01", decimal.NewFromInt(5000)},
		{"bad end date", c.ID, "2024-02-01", "tomorrow", decimal.NewFromInt(5000)},
		{"end before start", c.ID, "2025-02-01", "2024-02-01", decimal.NewFromInt(5000)},
	}
	for _, tc := range cases {
		err := svc.Add(ctx, tc.clientID, tc.start, tc.end, tc.amount)
		if se := apperrors.GetServiceError(err); se == nil || se.Code != apperrors.CodeBadRequest {
			t.Fatalf("%s: expected bad request, got %v", tc.name, err)
		}
	}
}
