package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/binotree/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// DefaultLabelMaxSteps es el número de pasos a partir del cual no se
// etiquetan los nodos individuales del retículo.
const DefaultLabelMaxSteps = 5

// Console implementa ports.Notifier.
type Console struct {
	out           io.Writer
	labelMaxSteps int
	table         bool
}

// NewConsole crea un notificador que escribe a stdout.
// Con table=true imprime el retículo completo aunque supere labelMaxSteps.
func NewConsole(labelMaxSteps int, table bool) *Console {
	return NewConsoleWriter(os.Stdout, labelMaxSteps, table)
}

// NewConsoleWriter crea un notificador sobre un io.Writer arbitrario (tests).
func NewConsoleWriter(w io.Writer, labelMaxSteps int, table bool) *Console {
	if labelMaxSteps <= 0 {
		labelMaxSteps = DefaultLabelMaxSteps
	}
	return &Console{out: w, labelMaxSteps: labelMaxSteps, table: table}
}

// Notify imprime el resumen y el retículo.
func (c *Console) Notify(_ context.Context, result domain.PricingResult) error {
	c.printSummary(result)

	n := result.Lattice.Steps()
	if n < 0 {
		return nil
	}
	if c.table || n <= c.labelMaxSteps {
		c.printLattice(result.Lattice)
		return nil
	}

	fmt.Fprintf(c.out, "  lattice: %d steps, %d nodes (node labels hidden above %d steps, use -table)\n",
		n, result.Lattice.NodeCount(), c.labelMaxSteps)
	c.printTerminal(result.Lattice)
	return nil
}

// printSummary imprime precio y constantes del modelo.
func (c *Console) printSummary(r domain.PricingResult) {
	p := r.Params
	fmt.Fprintf(c.out, "\n[%s] %s option  S0=%s K=%s r=%s T=%gy σ=%s N=%d\n",
		time.Now().Format("15:04:05"), p.Type, FormatCurrency(p.S0), FormatCurrency(p.K),
		FormatPercentage(p.R), p.T, FormatPercentage(p.Sigma), p.N)

	fmt.Fprintf(c.out, "  %s Option Price: %s\n", p.Type.Title(), FormatCurrency(r.OptionPrice))
	fmt.Fprintf(c.out, "  Up Factor (u): %s  Down Factor (d): %s  Risk-Neutral Probability (p): %s  dt: %g\n",
		FormatFactor(r.U), FormatFactor(r.D), FormatPercentage(r.P), r.Dt)

	if r.Constants().Arbitrage() {
		fmt.Fprintln(c.out, "  WARNING: p outside [0,1], exp(r·dt) is not between d and u")
	}
}

// printLattice imprime el retículo con una columna por paso y una fila por
// número de subidas, la rama alta arriba. Cada celda es "S / V".
func (c *Console) printLattice(l domain.Lattice) {
	n := l.Steps()

	header := make([]any, 0, n+2)
	header = append(header, "up\\step")
	for i := 0; i <= n; i++ {
		header = append(header, strconv.Itoa(i))
	}

	table := tablewriter.NewWriter(c.out)
	table.Header(header...)

	for j := n; j >= 0; j-- {
		row := make([]any, 0, n+2)
		row = append(row, strconv.Itoa(j))
		for i := 0; i <= n; i++ {
			node, ok := l.Node(i, j)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, nodeLabel(node))
		}
		table.Append(row...)
	}

	table.Render()
	fmt.Fprintln(c.out, "  cell = stock price / option value")
}

// printTerminal imprime solo los nodos del vencimiento.
func (c *Console) printTerminal(l domain.Lattice) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Up moves", "Stock", "Payoff")

	terminal := l.Terminal()
	for j := len(terminal) - 1; j >= 0; j-- {
		node := terminal[j]
		table.Append(
			strconv.Itoa(node.UpMoves),
			fmt.Sprintf("$%.2f", node.StockPrice),
			fmt.Sprintf("$%.2f", node.OptionValue),
		)
	}
	table.Render()
}

// NotifySweep imprime un barrido de strikes.
func (c *Console) NotifySweep(_ context.Context, points []domain.SweepPoint) error {
	if len(points) == 0 {
		fmt.Fprintf(c.out, "[%s] empty sweep\n", time.Now().Format("15:04:05"))
		return nil
	}

	// La cabecera sale del primer punto valorado; los puntos fallidos no tienen parámetros.
	ts := time.Now().Format("15:04:05")
	if base, ok := sweepBase(points); ok {
		fmt.Fprintf(c.out, "\n[%s] strike sweep: %d strikes, S0=%s r=%s T=%gy σ=%s N=%d\n",
			ts, len(points), FormatCurrency(base.S0),
			FormatPercentage(base.R), base.T, FormatPercentage(base.Sigma), base.N)
	} else {
		fmt.Fprintf(c.out, "\n[%s] strike sweep: %d strikes, all failed\n", ts, len(points))
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Strike", "Call", "Put", "Parity gap")

	for _, pt := range points {
		if pt.Err != nil {
			table.Append(FormatCurrency(pt.Strike), "ERR", "ERR", pt.Err.Error())
			continue
		}
		table.Append(
			FormatCurrency(pt.Strike),
			FormatCurrency(pt.Call.OptionPrice),
			FormatCurrency(pt.Put.OptionPrice),
			fmt.Sprintf("%.2e", domain.ParityGap(pt.Call, pt.Put)),
		)
	}
	table.Render()
	return nil
}

func sweepBase(points []domain.SweepPoint) (domain.OptionParameters, bool) {
	for _, pt := range points {
		if pt.Err == nil {
			return pt.Call.Params, true
		}
	}
	return domain.OptionParameters{}, false
}

// PrintHistory imprime las cabeceras de cálculos persistidos.
func (c *Console) PrintHistory(runs []domain.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no stored runs in range")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Created", "Type", "S0", "K", "r", "T", "Sigma", "N", "Price")
	for _, run := range runs {
		p := run.Result.Params
		table.Append(
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			p.Type.String(),
			FormatCurrency(p.S0),
			FormatCurrency(p.K),
			FormatPercentage(p.R),
			strconv.FormatFloat(p.T, 'g', -1, 64),
			FormatPercentage(p.Sigma),
			strconv.Itoa(p.N),
			FormatCurrency(run.Result.OptionPrice),
		)
	}
	table.Render()
}

func nodeLabel(n domain.TreeNode) string {
	return fmt.Sprintf("%.1f / %.2f", n.StockPrice, n.OptionValue)
}
