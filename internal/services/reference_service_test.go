package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicelog/internal/models"
)

func strPtr(s string) *string { return &s }

func newReferenceService(t *testing.T, store *fakeStore) *ReferenceService {
	t.Helper()
	return NewReferenceService(newTestDataService(t, store), testLogger())
}

func seedReference(t *testing.T, store *fakeStore) {
	store.seed(t, models.TableTechnicians, []models.Technician{
		{TechnicianName: "Ravi"},
		{TechnicianName: "  Priya  "},
		{TechnicianName: "Ravi"},
		{TechnicianName: ""},
	})
	store.seed(t, models.TableCustomers, []models.Customer{
		{CustomerName: "Acme Labs", ContactPerson: strPtr("Dr. Rao"), Phone: strPtr("555-0101")},
		{CustomerName: "Beta Corp"},
	})
	store.seed(t, models.TableInstruments, []models.Instrument{
		{InstrumentName: "Spectro 9000", CustomerName: "Acme Labs", SerialNumber: strPtr("SN-100")},
		{InstrumentName: "Spectro 9000", CustomerName: "Acme Labs", SerialNumber: strPtr("SN-101")},
		{InstrumentName: "Titrator X", CustomerName: "Acme Labs", SerialNumber: strPtr(" SN-200 ")},
		{InstrumentName: "Titrator X", CustomerName: "Beta Corp"},
	})
}

func TestTechnicianNames_TrimmedSortedDistinct(t *testing.T) {
	store := newFakeStore()
	seedReference(t, store)
	svc := newReferenceService(t, store)

	names, err := svc.TechnicianNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Priya", "Ravi"}, names)
}

func TestCustomerNames(t *testing.T) {
	store := newFakeStore()
	seedReference(t, store)
	svc := newReferenceService(t, store)

	names, err := svc.CustomerNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Labs", "Beta Corp"}, names)
}

func TestCustomerContact(t *testing.T) {
	store := newFakeStore()
	seedReference(t, store)
	svc := newReferenceService(t, store)

	contact, found, err := svc.CustomerContact(context.Background(), "  acme labs ")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, contact.ContactPerson)
	assert.Equal(t, "Dr. Rao", *contact.ContactPerson)

	_, found, err = svc.CustomerContact(context.Background(), "Nobody Inc")
	require.NoError(t, err)
	assert.False(t, found, "a contact miss is not an error")
}

func TestInstrumentsForCustomer(t *testing.T) {
	store := newFakeStore()
	seedReference(t, store)
	svc := newReferenceService(t, store)

	instruments, err := svc.InstrumentsForCustomer(context.Background(), "Acme Labs")
	require.NoError(t, err)
	require.Len(t, instruments, 3)
	assert.Equal(t, "Spectro 9000", instruments[0].InstrumentName)
	assert.Equal(t, "Titrator X", instruments[2].InstrumentName)
}

func TestSerialNumbers(t *testing.T) {
	store := newFakeStore()
	seedReference(t, store)
	svc := newReferenceService(t, store)

	serials, err := svc.SerialNumbers(context.Background(), "Acme Labs", "Spectro 9000")
	require.NoError(t, err)
	assert.Equal(t, []string{"SN-100", "SN-101"}, serials)

	// Instruments without serials contribute nothing.
	serials, err = svc.SerialNumbers(context.Background(), "Beta Corp", "Titrator X")
	require.NoError(t, err)
	assert.Empty(t, serials)
}

func TestLookupSerial(t *testing.T) {
	store := newFakeStore()
	seedReference(t, store)
	svc := newReferenceService(t, store)

	inst, found, err := svc.LookupSerial(context.Background(), "  sn-200 ")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Titrator X", inst.InstrumentName)
	assert.Equal(t, "Acme Labs", inst.CustomerName)

	_, found, err = svc.LookupSerial(context.Background(), "SN-999")
	require.NoError(t, err)
	assert.False(t, found, "a serial miss falls back to manual entry")

	_, found, err = svc.LookupSerial(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReference_StoreErrorSurfaces(t *testing.T) {
	store := newFakeStore()
	seedReference(t, store)
	store.failWith(models.TableInstruments, http.StatusInternalServerError)
	svc := newReferenceService(t, store)

	_, _, err := svc.LookupSerial(context.Background(), "SN-100")
	require.Error(t, err)
}
