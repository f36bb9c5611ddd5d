// Package reminder emails plant owners when their plants need water.
package reminder

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
)

// Compose renders a plain-text reminder for one owner.
func Compose(from string, owner *mail.Address, day time.Time, plants []model.Plant, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Name: "Plant Care", Address: from}})
	h.SetAddressList("To", []*mail.Address{owner})
	h.SetSubject(subject(len(plants), day))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(w, body(owner.Name, day, plants)); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

func subject(n int, day time.Time) string {
	if n == 1 {
		return fmt.Sprintf("1 plant needs water on %s", schedule.FormatDate(day))
	}
	return fmt.Sprintf("%d plants need water on %s", n, schedule.FormatDate(day))
}

func body(name string, day time.Time, plants []model.Plant) string {
	var b strings.Builder
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "These plants need water by %s:\n\n", schedule.FormatDate(day))
	for _, p := range plants {
		line := fmt.Sprintf("  - %s (%s)", p.PlantName, p.WateringFrequency)
		if p.Overdue(day) {
			line += fmt.Sprintf(", overdue since %s", p.NextWateringDate)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\nHappy growing!\n")
	return b.String()
}
