package services

import (
	"context"
	"sort"
	"strings"

	"servicelog/internal/models"
	"servicelog/internal/observability"
)

// ReferenceService answers form-prefill lookups against the reference tables.
// Lookup misses are not errors: the form falls back to manual entry.
type ReferenceService struct {
	data   *DataService
	logger *observability.Logger
}

// NewReferenceService creates a ReferenceService.
func NewReferenceService(data *DataService, logger *observability.Logger) *ReferenceService {
	return &ReferenceService{data: data, logger: logger}
}

// TechnicianNames returns the distinct technician names, trimmed and sorted.
func (s *ReferenceService) TechnicianNames(ctx context.Context) ([]string, error) {
	techs, err := s.data.Technicians(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	names := []string{}
	for _, t := range techs {
		name := strings.TrimSpace(t.TechnicianName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CustomerNames returns the distinct customer names, trimmed and sorted.
func (s *ReferenceService) CustomerNames(ctx context.Context) ([]string, error) {
	customers, err := s.data.Customers(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	names := []string{}
	for _, c := range customers {
		name := strings.TrimSpace(c.CustomerName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CustomerContact returns the contact details for a customer. found is false
// on a miss; that is not an error.
func (s *ReferenceService) CustomerContact(ctx context.Context, customerName string) (models.Customer, bool, error) {
	customers, err := s.data.Customers(ctx)
	if err != nil {
		return models.Customer{}, false, err
	}

	want := normalize(customerName)
	for _, c := range customers {
		if normalize(c.CustomerName) == want {
			return c, true, nil
		}
	}
	return models.Customer{}, false, nil
}

// InstrumentsForCustomer returns the instruments installed at a customer,
// sorted by name.
func (s *ReferenceService) InstrumentsForCustomer(ctx context.Context, customerName string) ([]models.Instrument, error) {
	instruments, err := s.data.Instruments(ctx)
	if err != nil {
		return nil, err
	}

	want := normalize(customerName)
	matched := []models.Instrument{}
	for _, inst := range instruments {
		if normalize(inst.CustomerName) == want {
			matched = append(matched, inst)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].InstrumentName < matched[j].InstrumentName
	})
	return matched, nil
}

// SerialNumbers returns the known serial numbers for a (customer, instrument)
// pair, sorted.
func (s *ReferenceService) SerialNumbers(ctx context.Context, customerName, instrumentName string) ([]string, error) {
	instruments, err := s.InstrumentsForCustomer(ctx, customerName)
	if err != nil {
		return nil, err
	}

	want := normalize(instrumentName)
	serials := []string{}
	for _, inst := range instruments {
		if normalize(inst.InstrumentName) != want {
			continue
		}
		if inst.SerialNumber == nil {
			continue
		}
		if serial := strings.TrimSpace(*inst.SerialNumber); serial != "" {
			serials = append(serials, serial)
		}
	}
	sort.Strings(serials)
	return serials, nil
}

// LookupSerial finds the instrument carrying a serial number so the form can
// prefill customer and instrument. The match trims whitespace and ignores
// case; a miss returns found=false with no error.
func (s *ReferenceService) LookupSerial(ctx context.Context, serial string) (models.Instrument, bool, error) {
	instruments, err := s.data.Instruments(ctx)
	if err != nil {
		return models.Instrument{}, false, err
	}

	want := normalize(serial)
	if want == "" {
		return models.Instrument{}, false, nil
	}
	for _, inst := range instruments {
		if inst.SerialNumber == nil {
			continue
		}
		if normalize(*inst.SerialNumber) == want {
			return inst, true, nil
		}
	}

	s.logger.Debug(ctx, "Serial lookup miss", map[string]interface{}{"serial": serial})
	return models.Instrument{}, false, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
