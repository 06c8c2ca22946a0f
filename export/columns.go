// Package export writes classified activity records to XLSX and CSV files.
// Both formats share one column layout.
package export

import (
	"strconv"

	"dataclassification/entity"
)

// Header is the column layout of every exported file.
var Header = []string{
	"ComputerId",
	"OrganizationId",
	"MachineName",
	"TcpAddress",
	"HostName",
	"UserName",
	"Date",
	"Data Apenas",
	"Hora Apenas",
	"ProcessName",
	"Domain",
	"URL_Name",
	"WindowTitle",
	"UTCActualSliceId",
	"ActivityTime",
	"IsConnect",
	"Classificação",
	"SubClassificação",
	"Tipo de Acesso",
	"Nome Extraído",
}

const dateTimeLayout = "2006-01-02 15:04:05"

// values returns the cells of r in Header order. Strings stay strings so
// the XLSX writer can sanitize them.
func values(r entity.ActivityRecord) []any {
	return []any{
		r.ComputerID,
		r.OrganizationID,
		r.MachineName,
		r.IPAddress,
		r.HostName,
		r.UserName,
		r.Timestamp.Format(dateTimeLayout),
		r.Date(),
		r.Hour(),
		r.ProcessName,
		r.Domain,
		r.URLName,
		r.WindowTitle,
		r.SliceID,
		r.ActivityTime(),
		r.IsConnect,
		r.Classification.Category,
		r.Classification.SubCategory,
		r.Classification.AccessType,
		entity.ExtractMachineName(r.MachineName),
	}
}

func stringValues(r entity.ActivityRecord) []string {
	vals := values(r)
	out := make([]string, len(vals))
	for i, v := range vals {
		switch v := v.(type) {
		case string:
			out[i] = v
		case int64:
			out[i] = strconv.FormatInt(v, 10)
		case bool:
			if v {
				out[i] = "True"
			} else {
				out[i] = "False"
			}
		}
	}
	return out
}
