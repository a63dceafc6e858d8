package healthsys

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/facility-atlas/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"MERCY CLINIC SPRINGFIELD COMMUNITIES", "Mercy"},
		{"mercy hospital south", "Mercy"},
		{"MISSOURI BAPTIST HOSPITAL OF SULLIVAN", "BJC HealthCare"},
		{"BARNES-JEWISH ST PETERS HOSPITAL", "BJC HealthCare"},
		{"COX-MONETT HOSPITAL INC", "CoxHealth"},
		{"SSM HEALTH ST JOSEPH HOSPITAL", "SSM Health"},
		{"CITIZENS MEMORIAL HEALTHCARE", "Citizens Memorial"},
		{"UNIVERSITY OF MISSOURI HEALTH CARE", "MU Health Care"},
		{"SAINT FRANCIS MEDICAL CENTER", "Saint Francis Healthcare System"},
		{"MIDWEST DIVISION - LRHC LLC", "HCA Midwest Health"},
		{"JORDAN VALLEY - REPUBLIC", "Jordan Valley Community Health"},
		{"SALEM MEMORIAL HOSPITAL", Independent},
		{"", Independent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.name), tt.name)
	}
}

func TestAssign(t *testing.T) {
	t.Parallel()
	fs := []model.Facility{
		{Name: "MERCY HOSPITAL LEBANON"},
		{Name: "MERCY CLINIC SPRINGFIELD COMMUNITIES"},
		{Name: "WOODS MEDICAL CLINIC, LLC"},
	}
	counts := Assign(fs)

	assert.Equal(t, "Mercy", fs[0].HealthSystem)
	assert.Equal(t, "Mercy", fs[1].HealthSystem)
	assert.Equal(t, Independent, fs[2].HealthSystem)
	assert.Equal(t, 2, counts["Mercy"])
	assert.Equal(t, 1, counts[Independent])
}
