package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	dataset := Dataset{
		Headers: []string{"Day", "Subject", "Teacher"},
		Rows: []map[string]string{
			{"Day": "Monday", "Subject": "Mathematics", "Teacher": "A. Rahman"},
			{"Day": "Tuesday", "Subject": "Physics", "Teacher": "B. Putri"},
		},
	}

	payload, err := NewCSVExporter().Render(dataset)
	require.NoError(t, err)
	require.Equal(t, "Day,Subject,Teacher\nMonday,Mathematics,A. Rahman\nTuesday,Physics,B. Putri\n", string(payload))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	dataset := Dataset{
		Headers: []string{"Day", "Subject"},
		Rows: []map[string]string{
			{"Day": "Monday", "Subject": "Mathematics"},
		},
	}

	payload, err := NewPDFExporter().Render(dataset, "Timetable 10-A")
	require.NoError(t, err)
	require.True(t, len(payload) > 0)
	require.Equal(t, "%PDF", string(payload[:4]))
}
