package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

type lifecycleTestContext struct {
	l       *ledger
	current *entity.Movement
	err     error
}

func (c *lifecycleTestContext) reset() {
	c.l = newLedger()
	c.current = nil
	c.err = nil
}

func (c *lifecycleTestContext) productWithReorderThreshold(id string, threshold int) error {
	return c.l.addProduct(id, int64(threshold))
}

func (c *lifecycleTestContext) activeWarehouses(a, b string) error {
	if err := c.l.addWarehouse(a, true); err != nil {
		return err
	}
	return c.l.addWarehouse(b, true)
}

func (c *lifecycleTestContext) unitsWereReceived(qty int, product, warehouse string) error {
	m, err := c.l.receive(product, warehouse, int64(qty))
	c.current = m
	return err
}

func (c *lifecycleTestContext) iCreateAReceipt(qty int, product, warehouse string) error {
	return c.created(c.l.create(entity.MovementTypeReceipt, entity.MovementLine{ProductID: product, DestWarehouseID: warehouse, Quantity: int64(qty)}))
}

func (c *lifecycleTestContext) iCreateADelivery(qty int, product, warehouse string) error {
	return c.created(c.l.create(entity.MovementTypeDelivery, entity.MovementLine{ProductID: product, SourceWarehouseID: warehouse, Quantity: int64(qty)}))
}

func (c *lifecycleTestContext) iCreateATransfer(qty int, product, from, to string) error {
	return c.created(c.l.create(entity.MovementTypeTransfer, entity.MovementLine{ProductID: product, SourceWarehouseID: from, DestWarehouseID: to, Quantity: int64(qty)}))
}

func (c *lifecycleTestContext) created(m *entity.Movement, err error) error {
	c.current = m
	return err
}

func (c *lifecycleTestContext) act(actions ...inventory.Action) error {
	if c.current == nil {
		return errors.New("no hay movimiento en curso")
	}
	id := c.current.ID
	m, err := c.l.drive(id, actions...)
	c.err = err
	if err == nil {
		c.current = m
	}
	return nil
}

func (c *lifecycleTestContext) iSubmitConfirmAndCommitIt() error {
	if err := c.act(fullPath...); err != nil {
		return err
	}
	return c.err
}

func (c *lifecycleTestContext) iSubmitIt() error { return c.act(inventory.ActionSubmit) }

func (c *lifecycleTestContext) iConfirmAvailability() error {
	return c.act(inventory.ActionConfirmAvailable)
}

func (c *lifecycleTestContext) iCommitIt() error { return c.act(inventory.ActionCommit) }

func (c *lifecycleTestContext) iCancelIt() error {
	if err := c.act(inventory.ActionCancel); err != nil {
		return err
	}
	return c.err
}

func (c *lifecycleTestContext) anotherDeliveryTakes(qty int, product, warehouse string) error {
	m, err := c.l.create(entity.MovementTypeDelivery, entity.MovementLine{ProductID: product, SourceWarehouseID: warehouse, Quantity: int64(qty)})
	if err != nil {
		return err
	}
	_, err = c.l.drive(m.ID, fullPath...)
	return err
}

func (c *lifecycleTestContext) theTransitionFailsWith(kind string) error {
	want := map[string]error{
		"insufficient stock": domain.ErrInsufficientStock,
		"negative stock":     domain.ErrNegativeStock,
		"invalid state":      domain.ErrInvalidState,
	}[kind]
	if want == nil {
		return fmt.Errorf("tipo de error desconocido %q", kind)
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("se esperaba %v, se obtuvo %v", want, c.err)
	}
	return nil
}

func (c *lifecycleTestContext) theMovementIs(status string) error {
	if got := c.l.status(c.current.ID); string(got) != status {
		return fmt.Errorf("estado %q, se esperaba %q", got, status)
	}
	return nil
}

func (c *lifecycleTestContext) theMovementHasAReversal() error {
	m, err := c.l.movRepo.GetByID(context.Background(), c.current.ID)
	if err != nil {
		return err
	}
	if m.ReversedBy == "" {
		return errors.New("el movimiento no tiene reversa")
	}
	rev, err := c.l.movRepo.GetByID(context.Background(), m.ReversedBy)
	if err != nil {
		return err
	}
	if rev == nil || rev.ReversalOf != m.ID {
		return errors.New("la reversa no está enlazada al original")
	}
	return nil
}

func (c *lifecycleTestContext) theStockIs(product, warehouse string, qty int) error {
	if got := c.l.qty(product, warehouse); got != int64(qty) {
		return fmt.Errorf("stock de %s en %s = %d, se esperaba %d", product, warehouse, got, qty)
	}
	return nil
}

func (c *lifecycleTestContext) theTotalStockIs(product string, qty int) error {
	total, err := c.l.stock.TotalByProduct(context.Background(), product)
	if err != nil {
		return err
	}
	if total != int64(qty) {
		return fmt.Errorf("total de %s = %d, se esperaba %d", product, total, qty)
	}
	return nil
}

func (c *lifecycleTestContext) productIsLow(product string) error {
	if !c.l.lowStock.IsLowStock(product) {
		return fmt.Errorf("%s debería estar en bajo stock", product)
	}
	return nil
}

func (c *lifecycleTestContext) productIsNotLow(product string) error {
	if c.l.lowStock.IsLowStock(product) {
		return fmt.Errorf("%s no debería estar en bajo stock", product)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &lifecycleTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given
	ctx.Step(`^product "([^"]*)" with reorder threshold (\d+)$`, tc.productWithReorderThreshold)
	ctx.Step(`^active warehouses "([^"]*)" and "([^"]*)"$`, tc.activeWarehouses)
	ctx.Step(`^(\d+) units of "([^"]*)" were received into "([^"]*)"$`, tc.unitsWereReceived)

	// When
	ctx.Step(`^I create a receipt of (\d+) "([^"]*)" into "([^"]*)"$`, tc.iCreateAReceipt)
	ctx.Step(`^I create a delivery of (\d+) "([^"]*)" from "([^"]*)"$`, tc.iCreateADelivery)
	ctx.Step(`^I create a transfer of (\d+) "([^"]*)" from "([^"]*)" to "([^"]*)"$`, tc.iCreateATransfer)
	ctx.Step(`^I submit, confirm and commit it$`, tc.iSubmitConfirmAndCommitIt)
	ctx.Step(`^I submit it$`, tc.iSubmitIt)
	ctx.Step(`^I confirm availability$`, tc.iConfirmAvailability)
	ctx.Step(`^I commit it$`, tc.iCommitIt)
	ctx.Step(`^I commit the last movement again$`, tc.iCommitIt)
	ctx.Step(`^I cancel it$`, tc.iCancelIt)
	ctx.Step(`^another delivery takes (\d+) "([^"]*)" from "([^"]*)"$`, tc.anotherDeliveryTakes)

	// Then
	ctx.Step(`^the transition fails with "([^"]*)"$`, tc.theTransitionFailsWith)
	ctx.Step(`^the movement is "([^"]*)"$`, tc.theMovementIs)
	ctx.Step(`^the movement has a reversal$`, tc.theMovementHasAReversal)
	ctx.Step(`^the stock of "([^"]*)" in "([^"]*)" is (\d+)$`, tc.theStockIs)
	ctx.Step(`^the total stock of "([^"]*)" is (\d+)$`, tc.theTotalStockIs)
	ctx.Step(`^product "([^"]*)" is low on stock$`, tc.productIsLow)
	ctx.Step(`^product "([^"]*)" is not low on stock$`, tc.productIsNotLow)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
