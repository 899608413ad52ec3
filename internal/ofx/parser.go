// Package ofx parses OFX/QFX bank exports into import candidates.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/ledgersift/ledgersift/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns import candidates.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]model.ImportCandidate, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var candidates []model.ImportCandidate
	var bankStmts, ccStmts int

	// Process bank messages
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			candidates = p.appendStatement(candidates, stmt.BankTranList)
		}
	}

	// Process credit card messages
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			candidates = p.appendStatement(candidates, stmt.BankTranList)
		}
	}

	slog.Info("Parsed OFX file",
		"total_candidates", len(candidates),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return candidates, nil
}

func (p *Parser) appendStatement(candidates []model.ImportCandidate, list *ofxgo.TransactionList) []model.ImportCandidate {
	if list == nil {
		return candidates
	}
	for _, ofxTx := range list.Transactions {
		candidates = append(candidates, p.convertTransaction(ofxTx, len(candidates)))
	}
	return candidates
}

// convertTransaction converts an OFX transaction to an import candidate.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, rowIndex int) model.ImportCandidate {
	merchantName := p.extractMerchantName(ofxTx)

	// OFX uses negative amounts for debits
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	txnType := model.TypeIncome
	if amount.IsNegative() {
		txnType = model.TypeExpense
	}

	candidate := model.ImportCandidate{
		Date:         ofxTx.DtPosted.Time,
		Description:  string(ofxTx.Name),
		MerchantName: merchantName,
		ExternalID:   string(ofxTx.FiTID),
		Amount:       amount,
		Source:       model.SourceOFXImport,
		Type:         txnType,
		RowIndex:     rowIndex,
	}

	if ofxTx.CheckNum != "" {
		candidate.ReferenceNumber = string(ofxTx.CheckNum)
	}

	// OFX doesn't provide categories, but some transaction types imply one
	switch fmt.Sprintf("%v", ofxTx.TrnType) {
	case "INT":
		candidate.Category = "Interest"
	case "FEE":
		candidate.Category = "Bank Fees"
	case "ATM":
		candidate.Category = "Cash & ATM"
	}

	return candidate
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	// Fall back to NAME field
	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	// Remove common prefixes
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
