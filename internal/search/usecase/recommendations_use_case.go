package usecase

import (
	"context"
	"fmt"
	"strings"

	"medreserve/internal/dto"
)

type MedicineSearcher interface {
	SearchMedicines(ctx context.Context, medicineNames []string, originLat, originLon, maxDistanceKm float64, city string) (*dto.SearchResponse, error)
}

// RecommendationsUseCase renders search results as readable text suited to a
// chat reply. Only the top pharmacies are shown.
type RecommendationsUseCase struct {
	searcher      MedicineSearcher
	originLat     float64
	originLon     float64
	maxDistanceKm float64
	topN          int
}

func NewRecommendationsUseCase(searcher MedicineSearcher, originLat, originLon, maxDistanceKm float64) *RecommendationsUseCase {
	return &RecommendationsUseCase{
		searcher:      searcher,
		originLat:     originLat,
		originLon:     originLon,
		maxDistanceKm: maxDistanceKm,
		topN:          3,
	}
}

func (uc *RecommendationsUseCase) Recommend(ctx context.Context, medicines []string, city string) (string, error) {
	result, err := uc.searcher.SearchMedicines(ctx, medicines, uc.originLat, uc.originLon, uc.maxDistanceKm, city)
	if err != nil {
		return "", err
	}

	if len(result.Pharmacies) == 0 {
		return "No pharmacies found in your area with the requested medicines.", nil
	}

	var b strings.Builder

	if result.AllFound {
		b.WriteString("All medicines are available!\n")
	} else {
		fmt.Fprintf(&b, "Some medicines may not be available: %s\n", strings.Join(result.MissingMedicines, ", "))
	}

	b.WriteString("\nRecommended Pharmacies:\n\n")

	top := result.Pharmacies
	if len(top) > uc.topN {
		top = top[:uc.topN]
	}

	for i, pharmacy := range top {
		fmt.Fprintf(&b, "%d. %s (%.2f km)\n", i+1, pharmacy.Name, pharmacy.DistanceKm)
		fmt.Fprintf(&b, "   Address: %s\n", pharmacy.Address)
		fmt.Fprintf(&b, "   Hours: %s\n", pharmacy.OperatingHours)
		if pharmacy.Phone != nil {
			fmt.Fprintf(&b, "   Phone: %s\n", *pharmacy.Phone)
		}

		b.WriteString("   Medicines:\n")
		for _, med := range pharmacy.Medicines {
			status := "Out of Stock"
			if med.InStock {
				status = "In Stock"
			}
			price := "N/A"
			if med.Price != nil {
				price = fmt.Sprintf("₹%.2f", *med.Price)
			}
			fmt.Fprintf(&b, "   - %s: %s (%s)\n", med.Name, price, status)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
