package domain

import "testing"

func checkTotals(t *testing.T, c Cart) {
	t.Helper()
	var total int64
	count := 0
	for _, line := range c.Lines {
		total += line.Product.Price * int64(line.Quantity)
		count += line.Quantity
	}
	if c.Total != total || c.ItemCount != count {
		t.Fatalf("derived totals drifted: total=%d want %d, itemCount=%d want %d", c.Total, total, c.ItemCount, count)
	}
}

func TestCart_Scenario(t *testing.T) {
	a := Product{ID: "a", Name: "FixGear Pro Single Speed", Price: 2500000}
	b := Product{ID: "b", Name: "Ban Continental", Price: 180000}

	c := EmptyCart().AddLine(a, 1)
	if c.Total != 2500000 || c.ItemCount != 1 {
		t.Fatalf("after first add: %+v", c)
	}

	c = c.AddLine(a, 1)
	if c.Total != 5000000 || c.ItemCount != 2 || len(c.Lines) != 1 || c.Lines[0].Quantity != 2 {
		t.Fatalf("after second add: %+v", c)
	}

	c = c.AddLine(b, 3)
	if c.Total != 5540000 || c.ItemCount != 5 {
		t.Fatalf("after adding b: %+v", c)
	}

	c = c.SetQuantity("a", 0)
	if _, ok := c.Line("a"); ok {
		t.Fatalf("expected line a removed: %+v", c)
	}
	if c.Total != 540000 || c.ItemCount != 3 {
		t.Fatalf("after removing a: %+v", c)
	}

	c = c.Clear()
	if c.Total != 0 || c.ItemCount != 0 || len(c.Lines) != 0 {
		t.Fatalf("after clear: %+v", c)
	}
}

func TestCart_AddLineSameProductKeepsOneLine(t *testing.T) {
	p := Product{ID: "p", Price: 1000}
	c := EmptyCart()
	sum := 0
	for _, q := range []int{1, 4, 2, 7} {
		c = c.AddLine(p, q)
		sum += q
		checkTotals(t, c)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Lines))
	}
	if c.Lines[0].Quantity != sum {
		t.Fatalf("expected quantity %d, got %d", sum, c.Lines[0].Quantity)
	}
}

func TestCart_TotalsHoldAfterEveryOperation(t *testing.T) {
	a := Product{ID: "a", Price: 300}
	b := Product{ID: "b", Price: 75}
	d := Product{ID: "d", Price: 0}

	steps := []func(Cart) Cart{
		func(c Cart) Cart { return c.AddLine(a, 2) },
		func(c Cart) Cart { return c.AddLine(b, 5) },
		func(c Cart) Cart { return c.AddLine(d, 1) },
		func(c Cart) Cart { return c.SetQuantity("b", 9) },
		func(c Cart) Cart { return c.SetQuantity("missing", 4) },
		func(c Cart) Cart { return c.RemoveLine("a") },
		func(c Cart) Cart { return c.AddLine(a, 1) },
		func(c Cart) Cart { return c.SetQuantity("d", -1) },
	}
	c := EmptyCart()
	for i, step := range steps {
		c = step(c)
		checkTotals(t, c)
		if i == 4 && len(c.Lines) != 3 {
			t.Fatalf("setQuantity on a missing line must not add one: %+v", c)
		}
	}
	if c.Total != 300+75*9 || c.ItemCount != 10 {
		t.Fatalf("unexpected final cart %+v", c)
	}
}

func TestCart_SetQuantityZeroEqualsRemove(t *testing.T) {
	base := EmptyCart().
		AddLine(Product{ID: "a", Price: 10}, 2).
		AddLine(Product{ID: "b", Price: 20}, 1)

	viaSet := base.SetQuantity("a", 0)
	viaRemove := base.RemoveLine("a")

	if len(viaSet.Lines) != len(viaRemove.Lines) || viaSet.Total != viaRemove.Total || viaSet.ItemCount != viaRemove.ItemCount {
		t.Fatalf("setQuantity(0)=%+v removeLine=%+v", viaSet, viaRemove)
	}
	for i := range viaSet.Lines {
		if viaSet.Lines[i].Product.ID != viaRemove.Lines[i].Product.ID {
			t.Fatalf("line order differs at %d", i)
		}
	}
}

func TestCart_RemoveMissingLineIsNoop(t *testing.T) {
	base := EmptyCart().AddLine(Product{ID: "a", Price: 10}, 2)
	got := base.RemoveLine("nope")
	if len(got.Lines) != 1 || got.Total != base.Total || got.ItemCount != base.ItemCount {
		t.Fatalf("expected unchanged cart, got %+v", got)
	}
}

func TestCart_ClearAlwaysEmpty(t *testing.T) {
	for _, c := range []Cart{
		{},
		EmptyCart(),
		EmptyCart().AddLine(Product{ID: "a", Price: 99}, 3),
	} {
		got := c.Clear()
		if got.Lines == nil || len(got.Lines) != 0 || got.Total != 0 || got.ItemCount != 0 {
			t.Fatalf("unexpected cleared cart %+v", got)
		}
	}
}

func TestCart_OperationsDoNotMutateReceiver(t *testing.T) {
	base := EmptyCart().AddLine(Product{ID: "a", Price: 10}, 1)
	_ = base.AddLine(Product{ID: "a", Price: 10}, 5)
	_ = base.SetQuantity("a", 8)
	if base.Lines[0].Quantity != 1 || base.Total != 10 {
		t.Fatalf("receiver mutated: %+v", base)
	}
}

func TestCart_AddLinePreservesOrder(t *testing.T) {
	c := EmptyCart().
		AddLine(Product{ID: "a"}, 1).
		AddLine(Product{ID: "b"}, 1).
		AddLine(Product{ID: "a"}, 1).
		AddLine(Product{ID: "c"}, 1)
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if c.Lines[i].Product.ID != id {
			t.Fatalf("position %d: want %s got %s", i, id, c.Lines[i].Product.ID)
		}
	}
}

func TestNewCart_RecomputesTotals(t *testing.T) {
	lines := []CartLine{
		{Product: Product{ID: "a", Price: 100}, Quantity: 2},
		{Product: Product{ID: "b", Price: 50}, Quantity: 1},
	}
	c := NewCart(lines)
	if c.Total != 250 || c.ItemCount != 3 {
		t.Fatalf("unexpected totals %+v", c)
	}
	lines[0].Quantity = 10
	if c.Lines[0].Quantity != 2 {
		t.Fatalf("NewCart must copy its input")
	}
}
