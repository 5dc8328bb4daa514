package domain

// CartLine holds the product as it was when first added to the cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"qty"`
}

func (l CartLine) Subtotal() int64 {
	return int64(l.Quantity) * l.Product.Price
}

// Cart is the cashier's working set. Lines are unique by product ID and
// always carry a positive quantity.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// AdjustQuantity applies delta to the product's line. A product not yet in
// the cart enters with quantity 1 whatever the size of a positive delta; a
// non-positive delta on an absent product does nothing. A line whose
// quantity drops to zero or below is removed.
func (c *Cart) AdjustQuantity(product Product, delta int) {
	idx := c.indexOf(product.ID)
	if idx < 0 {
		if delta > 0 {
			c.lines = append(c.lines, CartLine{Product: product, Quantity: 1})
		}
		return
	}

	c.lines[idx].Quantity += delta
	if c.lines[idx].Quantity <= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	}
}

func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

// Quantity returns the current quantity for productID, 0 when absent.
func (c *Cart) Quantity(productID string) int {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

func (c *Cart) Line(productID string) (CartLine, bool) {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.lines[idx], true
	}
	return CartLine{}, false
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
