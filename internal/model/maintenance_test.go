package model

import "testing"

func TestMaintenanceStatusRankOrdering(t *testing.T) {
	if !(MaintenancePending.Rank() < MaintenanceInProgress.Rank() &&
		MaintenanceInProgress.Rank() < MaintenanceCompleted.Rank()) {
		t.Error("maintenance statuses must rank pending < in_progress < completed")
	}
	if MaintenanceStatus("bogus").Rank() <= MaintenanceCompleted.Rank() {
		t.Error("unknown statuses must sort after known ones")
	}
	if MaintenanceStatus("bogus").Valid() {
		t.Error("unknown status reported valid")
	}
}
