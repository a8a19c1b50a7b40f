package domain

// CartLine pairs a product snapshot with a positive quantity.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart is an ordered set of lines keyed by product ID plus totals derived from them.
// Every operation returns a new Cart; Total and ItemCount are recomputed from Lines
// each time and are never adjusted on their own.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"itemCount"`
}

func EmptyCart() Cart {
	return Cart{Lines: []CartLine{}}
}

// NewCart builds a cart from lines as given, merging nothing.
func NewCart(lines []CartLine) Cart {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return withTotals(out)
}

// AddLine increments the quantity of an existing line for product.ID or appends a new one.
func (c Cart) AddLine(product Product, quantity int) Cart {
	lines := make([]CartLine, 0, len(c.Lines)+1)
	found := false
	for _, line := range c.Lines {
		if line.Product.ID == product.ID {
			line.Quantity += quantity
			found = true
		}
		lines = append(lines, line)
	}
	if !found {
		lines = append(lines, CartLine{Product: product, Quantity: quantity})
	}
	return withTotals(lines)
}

// RemoveLine drops the line for productID. A missing line is not an error.
func (c Cart) RemoveLine(productID string) Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.Product.ID != productID {
			lines = append(lines, line)
		}
	}
	return withTotals(lines)
}

// SetQuantity replaces the quantity of an existing line; quantity <= 0 removes it.
func (c Cart) SetQuantity(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.RemoveLine(productID)
	}
	lines := make([]CartLine, len(c.Lines))
	for i, line := range c.Lines {
		if line.Product.ID == productID {
			line.Quantity = quantity
		}
		lines[i] = line
	}
	return withTotals(lines)
}

func (c Cart) Clear() Cart {
	return EmptyCart()
}

// Line returns the line for productID, if any.
func (c Cart) Line(productID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.Product.ID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func withTotals(lines []CartLine) Cart {
	cart := Cart{Lines: lines}
	for _, line := range lines {
		cart.Total += line.Product.Price * int64(line.Quantity)
		cart.ItemCount += line.Quantity
	}
	return cart
}
