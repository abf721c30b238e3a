package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/aclindsa/ofxgo"
)

// OFX-derived columns beyond the required ones.
const (
	ColumnType    = "type"
	ColumnAccount = "account"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// merchantPrefixes are card-network noise stripped from OFX names.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// ReadOFX reads bank and credit card statements from an OFX/QFX file.
//
// Amounts are sign-flipped so money leaving the account is positive. Deposits
// and refunds therefore come out negative and are excluded by Normalize.
func ReadOFX(r io.Reader) (RawTable, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	table := RawTable{
		Header: []string{ColumnDate, ColumnAmount, ColumnDescription, ColumnType, ColumnAccount},
	}

	var bankStmts, ccStmts int
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			table.Rows = append(table.Rows, statementRows(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			table.Rows = append(table.Rows, statementRows(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	slog.Debug("Parsed OFX file",
		"rows", len(table.Rows),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return table, nil
}

func statementRows(txns []ofxgo.Transaction, accountID string) [][]string {
	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		amount, _ := txn.TrnAmt.Float64()
		rows = append(rows, []string{
			txn.DtPosted.Format("2006-01-02"),
			strconv.FormatFloat(-amount, 'f', 2, 64),
			extractMerchantName(txn),
			txn.TrnType.String(),
			accountID,
		})
	}
	return rows
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag line
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// extractMerchantName picks the cleanest description available on the transaction.
func extractMerchantName(txn ofxgo.Transaction) string {
	if txn.Payee != nil && txn.Payee.Name != "" {
		return strings.TrimSpace(string(txn.Payee.Name))
	}

	name := string(txn.Name)
	if txn.Memo != "" && isGenericDescription(name) {
		name = string(txn.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
