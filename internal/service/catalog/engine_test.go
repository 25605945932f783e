package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-gateway/internal/model"
)

func sampleTests() []model.Test {
	return []model.Test{
		{
			ID:              "t1",
			Title:           "CBC",
			Description:     "Complete blood count panel",
			Category:        model.CategoryBloodTest,
			BasePrice:       30,
			DurationMinutes: 15,
			HcsPricing: []model.HcsPricing{
				{HCSID: "hcs-1", Price: 25, Status: model.PricingApproved},
				{HCSID: "hcs-2", Price: 20, Status: model.PricingPending},
			},
		},
		{
			ID:              "t2",
			Title:           "Chest X-Ray",
			Description:     "Standard chest radiograph",
			Category:        model.CategoryXRay,
			BasePrice:       80,
			DurationMinutes: 10,
			HcsPricing: []model.HcsPricing{
				{HCSID: "hcs-1", Price: 75, Status: model.PricingApproved},
			},
		},
		{
			ID:              "t3",
			Title:           "Brain MRI",
			Description:     "Contrast-free brain scan",
			Category:        model.CategoryMRI,
			BasePrice:       450,
			DurationMinutes: 45,
		},
	}
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestApplyNoFilterReturnsAllSortedByName(t *testing.T) {
	items := Apply(sampleTests(), Filter{})
	assert.Equal(t, []string{"Brain MRI", "CBC", "Chest X-Ray"}, titles(items))
}

func TestApplyIsIdempotent(t *testing.T) {
	f := Filter{Search: "b", Sort: SortPriceAsc}
	first := Apply(sampleTests(), f)
	second := Apply(sampleTests(), f)
	assert.Equal(t, first, second)
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	tests := sampleTests()
	Apply(tests, Filter{Sort: SortPriceDesc})
	assert.Equal(t, sampleTests(), tests)
}

func TestApplySearchMatchesTitleOrDescription(t *testing.T) {
	byTitle := Apply(sampleTests(), Filter{Search: "cbc"})
	require.Len(t, byTitle, 1)
	assert.Equal(t, "CBC", byTitle[0].Title)

	byDescription := Apply(sampleTests(), Filter{Search: "radiograph"})
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Chest X-Ray", byDescription[0].Title)

	assert.Empty(t, Apply(sampleTests(), Filter{Search: "colonoscopy"}))
}

func TestApplyTypeFilter(t *testing.T) {
	items := Apply(sampleTests(), Filter{Type: string(model.CategoryXRay)})
	require.Len(t, items, 1)
	assert.Equal(t, "Chest X-Ray", items[0].Title)

	all := Apply(sampleTests(), Filter{Type: FilterAll})
	assert.Len(t, all, 3)
}

func TestApplyCenterFilterRequiresApprovedPricing(t *testing.T) {
	// hcs-2 only has a pending entry on CBC, so nothing is bookable there.
	assert.Empty(t, Apply(sampleTests(), Filter{Center: "hcs-2"}))

	items := Apply(sampleTests(), Filter{Center: "hcs-1"})
	assert.ElementsMatch(t, []string{"CBC", "Chest X-Ray"}, titles(items))
}

func TestApplyEffectivePriceUsesCenterPricing(t *testing.T) {
	items := Apply(sampleTests(), Filter{Center: "hcs-1", Sort: SortPriceAsc})
	require.Len(t, items, 2)
	assert.Equal(t, "CBC", items[0].Title)
	assert.Equal(t, 25.0, items[0].EffectivePrice)
	assert.Equal(t, 75.0, items[1].EffectivePrice)
}

func TestApplyEffectivePriceFallsBackToBasePrice(t *testing.T) {
	items := Apply(sampleTests(), Filter{})
	for _, it := range items {
		assert.Equal(t, it.BasePrice, it.EffectivePrice)
	}
}

func TestApplySortOrders(t *testing.T) {
	asc := Apply(sampleTests(), Filter{Sort: SortPriceAsc})
	assert.Equal(t, []string{"CBC", "Chest X-Ray", "Brain MRI"}, titles(asc))

	desc := Apply(sampleTests(), Filter{Sort: SortPriceDesc})
	assert.Equal(t, []string{"Brain MRI", "Chest X-Ray", "CBC"}, titles(desc))

	duration := Apply(sampleTests(), Filter{Sort: SortDuration})
	assert.Equal(t, []string{"Chest X-Ray", "CBC", "Brain MRI"}, titles(duration))
}

func TestApplyNameSortIsCaseInsensitive(t *testing.T) {
	tests := []model.Test{
		{ID: "a", Title: "abdominal ultrasound"},
		{ID: "b", Title: "Blood Sugar"},
		{ID: "c", Title: "ABO Typing"},
	}
	items := Apply(tests, Filter{Sort: SortName})
	assert.Equal(t, []string{"abdominal ultrasound", "ABO Typing", "Blood Sugar"}, titles(items))
}

func TestApplyCombinedFilters(t *testing.T) {
	items := Apply(sampleTests(), Filter{
		Search: "blood",
		Type:   string(model.CategoryBloodTest),
		Center: "hcs-1",
	})
	require.Len(t, items, 1)
	assert.Equal(t, "CBC", items[0].Title)
	assert.Equal(t, 25.0, items[0].EffectivePrice)
}
