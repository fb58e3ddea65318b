package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"medreserve/internal/domain"
	"medreserve/internal/errors"
)

type PharmacyRepository interface {
	FindActiveByCity(ctx context.Context, city string) ([]domain.Pharmacy, error)
}

type InventoryRepository interface {
	FindFirstByNameContains(ctx context.Context, pharmacyID int, query string) (*domain.InventoryItem, error)
	FindFirstBySaltContains(ctx context.Context, pharmacyID int, query string) (*domain.InventoryItem, error)
}

// MedicineMatch is one requested medicine resolved against one pharmacy.
// A medicine that could not be matched has a nil Price, zero stock and a
// conservative RequiresPrescription default.
type MedicineMatch struct {
	Name                 string
	Salt                 *string
	Price                *float64
	Stock                int
	InStock              bool
	RequiresPrescription bool
}

type PharmacyMatch struct {
	Pharmacy       domain.Pharmacy
	DistanceKm     float64
	Medicines      []MedicineMatch
	AllAvailable   bool
	AvailableCount int
}

type Result struct {
	Pharmacies              []PharmacyMatch
	AllFound                bool
	MissingMedicines        []string
	TotalPharmaciesSearched int
}

type SearchService struct {
	pharmacyRepo  PharmacyRepository
	inventoryRepo InventoryRepository
	resultLimit   int
	logger        *zap.Logger
}

func NewSearchService(
	pharmacyRepo PharmacyRepository,
	inventoryRepo InventoryRepository,
	resultLimit int,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		pharmacyRepo:  pharmacyRepo,
		inventoryRepo: inventoryRepo,
		resultLimit:   resultLimit,
		logger:        logger,
	}
}

// Search ranks active pharmacies in the city by availability of the requested
// medicines and great-circle distance from the origin. Requested names are
// matched per pharmacy by brand-name substring first, composition substring
// second. Duplicated request names each get their own entry.
func (s *SearchService) Search(
	ctx context.Context,
	medicineNames []string,
	originLat, originLon, maxDistanceKm float64,
	city string,
) (*Result, error) {
	pharmacies, err := s.pharmacyRepo.FindActiveByCity(ctx, city)
	if err != nil {
		return nil, err
	}

	var matches []PharmacyMatch
	for _, pharmacy := range pharmacies {
		distance := Haversine(originLat, originLon, pharmacy.Latitude, pharmacy.Longitude)
		if distance > maxDistanceKm {
			continue
		}

		medicines := make([]MedicineMatch, 0, len(medicineNames))
		availableCount := 0
		for _, name := range medicineNames {
			match, err := s.matchMedicine(ctx, pharmacy.ID, name)
			if err != nil {
				return nil, err
			}
			if match.InStock {
				availableCount++
			}
			medicines = append(medicines, match)
		}

		matches = append(matches, PharmacyMatch{
			Pharmacy:       pharmacy,
			DistanceKm:     round2(distance),
			Medicines:      medicines,
			AllAvailable:   availableCount == len(medicineNames),
			AvailableCount: availableCount,
		})
	}

	// Priority tie-break chain, not a weighted score: full availability
	// first, then match count, then nearest.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].AllAvailable != matches[j].AllAvailable {
			return matches[i].AllAvailable
		}
		if matches[i].AvailableCount != matches[j].AvailableCount {
			return matches[i].AvailableCount > matches[j].AvailableCount
		}
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	if len(matches) > s.resultLimit {
		matches = matches[:s.resultLimit]
	}

	// Missing medicines are judged against the ranked, limited set rather
	// than the whole city.
	var missing []string
	for _, name := range medicineNames {
		if !foundInMatches(matches, name) {
			missing = append(missing, name)
		}
	}

	s.logger.Debug("search completed",
		zap.String("city", city),
		zap.Int("pharmaciesSearched", len(pharmacies)),
		zap.Int("pharmaciesRanked", len(matches)),
		zap.Int("missingCount", len(missing)),
	)

	return &Result{
		Pharmacies:              matches,
		AllFound:                len(missing) == 0,
		MissingMedicines:        missing,
		TotalPharmaciesSearched: len(pharmacies),
	}, nil
}

func (s *SearchService) matchMedicine(ctx context.Context, pharmacyID int, name string) (MedicineMatch, error) {
	item, err := s.inventoryRepo.FindFirstByNameContains(ctx, pharmacyID, name)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); !ok {
			return MedicineMatch{}, err
		}
		item, err = s.inventoryRepo.FindFirstBySaltContains(ctx, pharmacyID, name)
		if err != nil {
			if _, ok := errors.IsNotFoundError(err); !ok {
				return MedicineMatch{}, err
			}
			// Not stocked here at all. The real prescription requirement is
			// unknown, so default to requiring one.
			return MedicineMatch{
				Name:                 name,
				Stock:                0,
				InStock:              false,
				RequiresPrescription: true,
			}, nil
		}
	}

	salt := item.SaltComposition
	price := round2(item.PriceINR)
	return MedicineMatch{
		Name:                 item.MedicineName,
		Salt:                 &salt,
		Price:                &price,
		Stock:                item.StockCount,
		InStock:              item.StockCount > 0,
		RequiresPrescription: item.RequiresPrescription,
	}, nil
}

func foundInMatches(matches []PharmacyMatch, name string) bool {
	needle := strings.ToLower(name)
	for _, pm := range matches {
		for _, m := range pm.Medicines {
			if m.InStock && strings.Contains(strings.ToLower(m.Name), needle) {
				return true
			}
		}
	}
	return false
}

const earthRadiusKm = 6371

// Haversine returns the great-circle distance between two coordinates in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
