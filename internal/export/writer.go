package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvColumns fixes the CSV header and column order.
var csvColumns = []string{
	"label_id",
	"request_id",
	"annotator_uid",
	"annotator",
	"role",
	"priority",
	"tents_count",
	"goa_window",
	"goa_window_label",
	"routing_department",
	"routing_other",
	"num_people_bin",
	"size_feet_bin",
	"observed_conditions",
	"outcome_alignment",
	"follow_up_need",
	"notes",
	"review_status",
	"review_notes",
	"timestamp",
	"consensus_status",
}

// WriteCSV renders the rows with a header line. An empty row set still
// writes the header so downstream loaders see a well-formed file.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.LabelID,
			row.RequestID,
			row.AnnotatorUID,
			row.Annotator,
			row.Role,
			row.Priority,
			strconv.Itoa(row.TentsCount),
			row.GoaWindow,
			row.GoaWindowLabel,
			row.RoutingDepartment,
			row.RoutingOther,
			row.NumPeopleBin,
			row.SizeFeetBin,
			row.ObservedConditions,
			row.OutcomeAlignment,
			row.FollowUpNeed,
			row.Notes,
			row.ReviewStatus,
			row.ReviewNotes,
			row.Timestamp.Format(time.RFC3339Nano),
			string(row.ConsensusStatus),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.LabelID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSONL renders one JSON object per line.
func WriteJSONL(w io.Writer, rows []Row) error {
	encoder := json.NewEncoder(w)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("write jsonl row %s: %w", row.LabelID, err)
		}
	}
	return nil
}
