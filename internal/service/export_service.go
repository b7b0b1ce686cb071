package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/ports"
	"visa-advisory-portal/internal/util"
)

var dashboardHeaders = []string{
	"ID", "Nombres", "Apellidos", "Email", "Teléfono", "Destino", "Visa",
	"Estado", "Progreso (%)", "Docs Totales", "Docs Pendientes", "Fecha Registro",
}

// ExportService : client dashboard reports for staff
type ExportService struct {
	clients ports.ClientService
}

func NewExportService(clients ports.ClientService) *ExportService {
	return &ExportService{clients: clients}
}

func (s *ExportService) DashboardCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(dashboardHeaders); err != nil {
		return nil, util.LogError("[ExportService] write csv headers", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, util.LogError("[ExportService] write csv rows", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) DashboardPDF(ctx context.Context) ([]byte, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr("Reporte de Clientes"), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// the uuid column is left out of the printed table
	headers := dashboardHeaders[1:]
	colWidth := 277.0 / float64(len(headers))

	pdf.SetFont("Arial", "B", 8)
	for _, header := range headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for _, row := range rows {
		for _, value := range row[1:] {
			pdf.CellFormat(colWidth, 7, tr(truncate(value, 28)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, util.LogError("[ExportService] render pdf", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) rows(ctx context.Context) ([][]string, error) {
	clients, err := s.clients.List(ctx, "")
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(clients))
	for _, client := range clients {
		rows = append(rows, clientRow(client))
	}
	return rows, nil
}

func clientRow(client model.Client) []string {
	return []string{
		client.ID,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.DestinationCountry,
		client.VisaType,
		client.Status,
		strconv.Itoa(client.Progress),
		strconv.Itoa(client.TotalDocuments),
		strconv.Itoa(client.PendingDocuments),
		client.CreatedAt.Format("2006-01-02"),
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return fmt.Sprintf("%s...", string(runes[:limit-3]))
}
