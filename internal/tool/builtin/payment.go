package builtin

import (
	"context"
	"strings"

	"github.com/harunnryd/ragent/internal/model/contract"
	toolcore "github.com/harunnryd/ragent/internal/tool"
)

// Payment is one row of the in-memory payments table.
type Payment struct {
	TransactionID string
	CustomerID    string
	Amount        float64
	Date          string
	Status        string
}

// DefaultPayments is the fixed sample ledger the payment tools answer from.
var DefaultPayments = []Payment{
	{TransactionID: "T1001", CustomerID: "C001", Amount: 125.50, Date: "2021-10-05", Status: "Paid"},
	{TransactionID: "T1002", CustomerID: "C002", Amount: 89.99, Date: "2021-10-06", Status: "Unpaid"},
	{TransactionID: "T1003", CustomerID: "C003", Amount: 120.00, Date: "2021-10-07", Status: "Paid"},
	{TransactionID: "T1004", CustomerID: "C002", Amount: 54.30, Date: "2021-10-05", Status: "Paid"},
	{TransactionID: "T1005", CustomerID: "C001", Amount: 210.20, Date: "2021-10-08", Status: "Pending"},
}

const transactionNotFound = "transaction id not found."

type transactionArgs struct {
	TransactionID string `json:"transactionId"`
}

func init() {
	toolcore.RegisterBuiltin("getPaymentStatus", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return NewPaymentStatusTool(NewPaymentLedger(DefaultPayments)), nil
	})
	toolcore.RegisterBuiltin("getPaymentDate", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		return NewPaymentDateTool(NewPaymentLedger(DefaultPayments)), nil
	})
}

// PaymentLedger indexes payments by transaction id. Read-only after construction.
type PaymentLedger struct {
	byID map[string]Payment
}

func NewPaymentLedger(payments []Payment) *PaymentLedger {
	ledger := &PaymentLedger{byID: make(map[string]Payment, len(payments))}
	for _, p := range payments {
		ledger.byID[p.TransactionID] = p
	}
	return ledger
}

func (l *PaymentLedger) Lookup(transactionID string) (Payment, bool) {
	p, ok := l.byID[strings.TrimSpace(transactionID)]
	return p, ok
}

func transactionDecl(name, description string) contract.ToolDef {
	return contract.ToolDef{
		Name:        name,
		Description: description,
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"transactionId": map[string]interface{}{
					"type":        "string",
					"description": "The transaction id.",
				},
			},
			"required": []string{"transactionId"},
		},
	}
}

var paymentMetadata = toolcore.ToolMetadata{
	Source:       "builtin",
	Capabilities: []string{"payments.read"},
	Risk:         toolcore.RiskLow,
}

func NewPaymentStatusTool(ledger *PaymentLedger) toolcore.Tool {
	decl := transactionDecl("getPaymentStatus", "Get payment status of a transaction")
	return toolcore.WithMetadata(toolcore.New(decl, func(ctx context.Context, args transactionArgs) (string, error) {
		p, ok := ledger.Lookup(args.TransactionID)
		if !ok {
			return toolcore.JSON(map[string]string{"error": transactionNotFound})
		}
		return toolcore.JSON(map[string]string{"status": p.Status})
	}), paymentMetadata)
}

func NewPaymentDateTool(ledger *PaymentLedger) toolcore.Tool {
	decl := transactionDecl("getPaymentDate", "Get the payment date of a transaction")
	return toolcore.WithMetadata(toolcore.New(decl, func(ctx context.Context, args transactionArgs) (string, error) {
		p, ok := ledger.Lookup(args.TransactionID)
		if !ok {
			return toolcore.JSON(map[string]string{"error": transactionNotFound})
		}
		return toolcore.JSON(map[string]string{"date": p.Date})
	}), paymentMetadata)
}
