package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petplus-bot/config"
	"petplus-bot/models"
)

func testRules() *models.ShippingRules {
	return BuildShippingRules(&config.ShippingDef{
		ValidZones:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25},
		PremiumZones:   []string{"Carretera a El Salvador", "Fraijanes"},
		Departments:    []string{"Guatemala", "Escuintla", "Sacatepéquez"},
		StandardCost:   25,
		PremiumCost:    30,
		DepartmentCost: 35,
	})
}

func TestQuoteStandardZone(t *testing.T) {
	t.Parallel()

	q := Quote("vivo en Zona 10", testRules())
	require.Equal(t, QuoteResolved, q.Status)
	assert.Equal(t, "Zona 10 Q25", q.Label)
	assert.Equal(t, 25.0, q.Cost)
}

func TestQuotePremiumZoneWithNumber(t *testing.T) {
	t.Parallel()

	q := Quote("zona 4, por Fraijanes", testRules())
	require.Equal(t, QuoteResolved, q.Status)
	assert.Equal(t, "Zona 4 (premium) Q30", q.Label)
	assert.Equal(t, 30.0, q.Cost)
}

func TestQuoteInvalidZoneNumber(t *testing.T) {
	t.Parallel()

	q := Quote("zona 99", testRules())
	assert.Equal(t, QuoteNoMatch, q.Status)
}

func TestQuotePendingZone(t *testing.T) {
	t.Parallel()

	q := Quote("zona", testRules())
	assert.Equal(t, QuotePendingZone, q.Status)

	q = Quote("soy de una zona lejana", testRules())
	assert.Equal(t, QuotePendingZone, q.Status)
}

func TestQuoteDepartment(t *testing.T) {
	t.Parallel()

	q := Quote("envían a Escuintla?", testRules())
	require.Equal(t, QuoteResolved, q.Status)
	assert.Equal(t, "Departamento de Escuintla Q35", q.Label)
	assert.Equal(t, 35.0, q.Cost)

	// Accented department names match their normalized form.
	q = Quote("para sacatepequez por favor", testRules())
	require.Equal(t, QuoteResolved, q.Status)
	assert.Equal(t, 35.0, q.Cost)
}

func TestQuoteCapitalCollision(t *testing.T) {
	t.Parallel()

	// "guatemala" alone can mean the city; only the explicit department wins.
	q := Quote("estoy en guatemala", testRules())
	assert.Equal(t, QuoteNoMatch, q.Status)

	q = Quote("departamento de guatemala", testRules())
	require.Equal(t, QuoteResolved, q.Status)
	assert.Equal(t, "Departamento de Guatemala Q35", q.Label)
}

func TestQuotePremiumZoneWithoutNumber(t *testing.T) {
	t.Parallel()

	q := Quote("vivo por carretera a el salvador", testRules())
	require.Equal(t, QuoteResolved, q.Status)
	assert.Equal(t, "Carretera A El Salvador (premium) Q30", q.Label)
	assert.Equal(t, 30.0, q.Cost)
}

func TestQuoteNoMatch(t *testing.T) {
	t.Parallel()

	q := Quote("hola buenas tardes", testRules())
	assert.Equal(t, QuoteNoMatch, q.Status)

	q = Quote("", testRules())
	assert.Equal(t, QuoteNoMatch, q.Status)
}

func TestQuoteZoneTakesPrecedenceOverDepartment(t *testing.T) {
	t.Parallel()

	q := Quote("zona 3 de escuintla", testRules())
	require.Equal(t, QuoteResolved, q.Status)
	assert.Equal(t, "Zona 3 Q25", q.Label)
}
