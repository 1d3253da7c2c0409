package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nkurunziza/momo-ledger/internal/model"
)

// rawRecord mirrors one <record> element of an SMS export file.
type rawRecord struct {
	Ref      string `xml:"ref,attr"`
	Sender   string `xml:"sender"`
	Receiver string `xml:"receiver"`
	Amount   string `xml:"amount"`
	Date     string `xml:"date"`
	Body     string `xml:"body"`
}

func (r rawRecord) empty() bool {
	return r.Ref == "" && r.Sender == "" && r.Receiver == "" &&
		r.Amount == "" && r.Date == "" && r.Body == ""
}

// Parser turns a raw SMS-export XML document into candidates. A bad
// record never aborts the batch: it becomes a ParseFailure and decoding
// moves on. Only an unreadable input stream is returned as an error.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse decodes every <record> element from r. Offsets count records in
// document order, failures included, so dead letters are addressable by
// batch + offset.
func (p *Parser) Parse(r io.Reader) ([]model.Candidate, []model.ParseFailure, error) {
	var candidates []model.Candidate
	var failures []model.ParseFailure

	decoder := xml.NewDecoder(r)
	offset := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The decoder cannot recover from a syntax error; whatever
			// records remain behind the corruption are dead-lettered as
			// one failure instead of silently dropped.
			failures = append(failures, model.ParseFailure{
				Offset:   offset,
				Fragment: "",
				Reason:   fmt.Sprintf("document corrupt after record %d: %v", offset, err),
			})
			return candidates, failures, nil
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "record" {
			continue
		}

		var raw rawRecord
		if err := decoder.DecodeElement(&raw, &start); err != nil {
			failures = append(failures, model.ParseFailure{
				Offset:   offset,
				Fragment: fmt.Sprintf("<record ref=%q>", raw.Ref),
				Reason:   fmt.Sprintf("undecodable record: %v", err),
			})
			offset++
			continue
		}

		if raw.empty() {
			failures = append(failures, model.ParseFailure{
				Offset:   offset,
				Fragment: "<record/>",
				Reason:   "record carries no fields",
			})
			offset++
			continue
		}

		candidates = append(candidates, model.Candidate{
			Offset:        offset,
			Ref:           strings.TrimSpace(raw.Ref),
			SenderPhone:   raw.Sender,
			ReceiverPhone: raw.Receiver,
			Amount:        raw.Amount,
			Date:          raw.Date,
			Body:          raw.Body,
		})
		offset++
	}

	return candidates, failures, nil
}
