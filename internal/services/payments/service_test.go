package payments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/agent"
	"github.com/realtydesk/realtydesk/internal/domain/client"
	"github.com/realtydesk/realtydesk/internal/domain/contract"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage/memory"
)

func seedContract(t *testing.T, store *memory.Store, percentage int64) int64 {
	t.Helper()
	ctx := context.Background()
	c, err := store.CreateClient(ctx, client.Client{
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
	if err := store.AddContract(ctx, contract.Contract{
		ClientID:  c.ID,
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(10000),
	}); err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	contractID := store.ContractIDs()[0]

	a := store.SeedAgent(agent.Agent{FirstName: "Sara", LastName: "Seller"})
	co := store.SeedCommission(contract.Commission{Percentage: decimal.NewFromInt(percentage)})
	store.LinkEarns(a.ID, contractID, co.ID)
	return contractID
}

func TestService(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()
	contractID := seedContract(t, store, 5)

	rep, err := svc.Add(ctx, contractID, decimal.NewFromInt(2000))
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if !rep.PreAmount.Equal(decimal.Zero) || !rep.PostAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 0 -> 100, got %s -> %s", rep.PreAmount, rep.PostAmount)
	}

	list, err := svc.List(ctx, contractID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("unexpected payments %+v", list)
	}
}

func TestService_AddValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()
	contractID := seedContract(t, store, 5)

	if _, err := svc.Add(ctx, 0, decimal.NewFromInt(100)); err == nil {
		t.Fatal("expected bad request for zero contract id")
	}
	_, err := svc.Add(ctx, contractID, decimal.Zero)
	if se := apperrors.GetServiceError(err); se == nil || se.Code != apperrors.CodeBadRequest {
		t.Fatalf("expected bad request for zero amount, got %v", err)
	}
	_, err = svc.Add(ctx, contractID, decimal.NewFromInt(-50))
	if se := apperrors.GetServiceError(err); se == nil || se.Code != apperrors.CodeBadRequest {
		t.Fatalf("expected bad request for negative amount, got %v", err)
	}
}
