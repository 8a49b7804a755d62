package valuation

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"compscout/server/internal/models"
)

func TestController_NotifiesOnlyOnChange(t *testing.T) {
	c := NewController(fixedEngine(), logrus.New())

	var notifications []float64
	c.Subscribe(func(subjectID int64, est Estimate) {
		notifications = append(notifications, est.ARV)
	})

	subject := models.SubjectProperty{ID: 1, Sqft: 1500}
	comps := []models.ComparableSale{
		{ID: 1, Address: "100 Oak St", SoldPrice: 300000, Sqft: 1500, SoldDate: "5/1/2024"},
	}

	// First pass publishes.
	est := c.Recompute(subject, comps)
	assert.Equal(t, 300000.0, est.ARV)
	assert.Len(t, notifications, 1)

	// Identical inputs: recomputed but not republished.
	c.Recompute(subject, comps)
	c.Recompute(subject, comps)
	assert.Len(t, notifications, 1)

	// Editing a comp in place changes the ARV and publishes again.
	comps[0].SoldPrice = 310000
	est = c.Recompute(subject, comps)
	assert.Equal(t, 310000.0, est.ARV)
	assert.Len(t, notifications, 2)
	assert.Equal(t, []float64{300000, 310000}, notifications)
}

func TestController_FirstPassAlwaysPublishes(t *testing.T) {
	c := NewController(fixedEngine(), logrus.New())

	published := 0
	c.Subscribe(func(int64, Estimate) { published++ })

	// Zero comps means ARV 0, but the first pass still publishes so the
	// caller learns there is no estimate.
	c.Recompute(models.SubjectProperty{ID: 1}, nil)
	assert.Equal(t, 1, published)

	c.Recompute(models.SubjectProperty{ID: 1}, nil)
	assert.Equal(t, 1, published)
}

func TestController_TracksSubjectsIndependently(t *testing.T) {
	c := NewController(fixedEngine(), logrus.New())

	var subjects []int64
	c.Subscribe(func(subjectID int64, est Estimate) {
		subjects = append(subjects, subjectID)
	})

	comps := []models.ComparableSale{
		{ID: 1, Address: "100 Oak St", SoldPrice: 300000, Sqft: 1500, SoldDate: "5/1/2024"},
	}

	c.Recompute(models.SubjectProperty{ID: 1, Sqft: 1500}, comps)
	c.Recompute(models.SubjectProperty{ID: 2, Sqft: 1500}, comps)
	c.Recompute(models.SubjectProperty{ID: 1, Sqft: 1500}, comps)

	assert.Equal(t, []int64{1, 2}, subjects)
}

func TestController_Forget(t *testing.T) {
	c := NewController(fixedEngine(), logrus.New())

	published := 0
	c.Subscribe(func(int64, Estimate) { published++ })

	subject := models.SubjectProperty{ID: 1, Sqft: 1500}
	comps := []models.ComparableSale{
		{ID: 1, Address: "100 Oak St", SoldPrice: 300000, Sqft: 1500, SoldDate: "5/1/2024"},
	}

	c.Recompute(subject, comps)
	c.Forget(subject.ID)

	// After forgetting, the next pass is treated as a first publish.
	c.Recompute(subject, comps)
	assert.Equal(t, 2, published)
}
