package receipt

import (
	"context"
	"fmt"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// ThermalPrinter is the capability surface of a Bluetooth ESC/POS printer.
// No driver ships with this service; a caller may plug one in as an extra
// receipt sink.
type ThermalPrinter interface {
	Connect(ctx context.Context, address string) error
	Init(ctx context.Context) error
	SetAlign(ctx context.Context, align Align) error
	PrintText(ctx context.Context, text string) error
	PrintColumns(ctx context.Context, widths []int, aligns []Align, texts []string) error
	PrintQRCode(ctx context.Context, content string, size int) error
	PrintBarcode(ctx context.Context, content string) error
	CutPaper(ctx context.Context) error
}

// PrintReceipt sends the fixed-width body of doc to p line by line and cuts
// the paper.
func PrintReceipt(ctx context.Context, p ThermalPrinter, doc Document) error {
	if err := p.Init(ctx); err != nil {
		return fmt.Errorf("printer init failed: %w", err)
	}
	if err := p.SetAlign(ctx, AlignLeft); err != nil {
		return fmt.Errorf("printer align failed: %w", err)
	}
	for i, line := range doc.Lines() {
		if err := p.PrintText(ctx, line+"\n"); err != nil {
			return fmt.Errorf("printer failed on line %d: %w", i+1, err)
		}
	}
	if err := p.CutPaper(ctx); err != nil {
		return fmt.Errorf("printer cut failed: %w", err)
	}
	return nil
}
