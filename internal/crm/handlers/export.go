package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gartstein/crm/internal/crm/models"
	"go.uber.org/zap"
)

// Export endpoints serve the joined result sets as CSV downloads or, on
// format=json, the raw joined records.

func (h *Handler) exportDeals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	deals := h.service.GetDeals()

	startDate, endDate := r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")
	if startDate != "" && endDate != "" {
		start, err := parseExportDate(startDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		end, err := parseExportDate(endDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		filtered := make([]models.DealWithRelations, 0, len(deals))
		for _, deal := range deals {
			if !deal.CreatedAt.Before(start) && !deal.CreatedAt.After(end) {
				filtered = append(filtered, deal)
			}
		}
		deals = filtered
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, deals)
		return
	}

	rows := make([][]string, 0, len(deals)+1)
	rows = append(rows, []string{
		"Deal ID", "Title", "Value", "Stage", "Probability",
		"Company", "Contact", "Expected Close Date", "Created Date",
	})
	for _, deal := range deals {
		rows = append(rows, []string{
			deal.ID,
			deal.Title,
			deal.Value.StringFixed(2),
			string(deal.Stage),
			strconv.Itoa(deal.Probability),
			deal.Company.Name,
			fmt.Sprintf("%s %s", deal.Contact.FirstName, deal.Contact.LastName),
			formatExportDate(deal.ExpectedCloseDate),
			deal.CreatedAt.Format("2006-01-02"),
		})
	}
	h.writeCSV(w, "deals.csv", rows)
}

func (h *Handler) exportContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	contacts := h.service.GetContacts()

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, contacts)
		return
	}

	rows := make([][]string, 0, len(contacts)+1)
	rows = append(rows, []string{
		"Contact ID", "First Name", "Last Name", "Email",
		"Phone", "Title", "Company", "LinkedIn", "Notes",
	})
	for _, contact := range contacts {
		companyName := ""
		if contact.Company != nil {
			companyName = contact.Company.Name
		}
		rows = append(rows, []string{
			contact.ID,
			contact.FirstName,
			contact.LastName,
			contact.Email,
			contact.Phone,
			contact.Title,
			companyName,
			contact.LinkedIn,
			contact.Notes,
		})
	}
	h.writeCSV(w, "contacts.csv", rows)
}

func (h *Handler) exportCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	companies := h.service.GetCompanies()

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, companies)
		return
	}

	rows := make([][]string, 0, len(companies)+1)
	rows = append(rows, []string{
		"Company ID", "Name", "Website", "Industry", "Size", "Description",
	})
	for _, company := range companies {
		rows = append(rows, []string{
			company.ID,
			company.Name,
			company.Website,
			company.Industry,
			string(company.Size),
			company.Description,
		})
	}
	h.writeCSV(w, "companies.csv", rows)
}

func (h *Handler) writeCSV(w http.ResponseWriter, filename string, rows [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		h.logger.Error("Failed to write CSV export", zap.Error(err))
	}
}

func parseExportDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func formatExportDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
