package usecase

import (
	"context"

	"medreserve/internal/dto"
	"medreserve/internal/search/service"
)

type Service interface {
	Search(ctx context.Context, medicineNames []string, originLat, originLon, maxDistanceKm float64, city string) (*service.Result, error)
}

type SearchUseCase struct {
	service Service
}

func NewSearchUseCase(svc Service) *SearchUseCase {
	return &SearchUseCase{service: svc}
}

func (uc *SearchUseCase) SearchMedicines(
	ctx context.Context,
	medicineNames []string,
	originLat, originLon, maxDistanceKm float64,
	city string,
) (*dto.SearchResponse, error) {
	result, err := uc.service.Search(ctx, medicineNames, originLat, originLon, maxDistanceKm, city)
	if err != nil {
		return nil, err
	}

	pharmacies := make([]dto.PharmacyResultDTO, 0, len(result.Pharmacies))
	for _, pm := range result.Pharmacies {
		medicines := make([]dto.MedicineItemDTO, 0, len(pm.Medicines))
		for _, m := range pm.Medicines {
			medicines = append(medicines, dto.MedicineItemDTO{
				Name:                 m.Name,
				Salt:                 m.Salt,
				Price:                m.Price,
				Stock:                m.Stock,
				InStock:              m.InStock,
				RequiresPrescription: m.RequiresPrescription,
			})
		}

		pharmacies = append(pharmacies, dto.PharmacyResultDTO{
			PharmacyID:     pm.Pharmacy.ID,
			Name:           pm.Pharmacy.Name,
			Address:        pm.Pharmacy.Address,
			Locality:       pm.Pharmacy.Locality,
			DistanceKm:     pm.DistanceKm,
			OperatingHours: pm.Pharmacy.OperatingHours,
			Is24Hr:         pm.Pharmacy.Is24Hr,
			Phone:          pm.Pharmacy.Phone,
			Medicines:      medicines,
			AllAvailable:   pm.AllAvailable,
			AvailableCount: pm.AvailableCount,
		})
	}

	missing := result.MissingMedicines
	if missing == nil {
		missing = []string{}
	}

	return &dto.SearchResponse{
		Success:                 true,
		Pharmacies:              pharmacies,
		AllFound:                result.AllFound,
		MissingMedicines:        missing,
		TotalPharmaciesSearched: result.TotalPharmaciesSearched,
	}, nil
}
