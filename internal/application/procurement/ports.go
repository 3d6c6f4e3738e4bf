package procurement

import (
	"context"

	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// POLineForPDF línea de la OC enriquecida con los datos del SKU para el documento.
type POLineForPDF struct {
	entity.POItem
	SKU         string
	ProductName string
}

// PurchaseOrderPDFGenerator genera el documento PDF de una orden de compra.
type PurchaseOrderPDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, po *entity.PurchaseOrder, company *entity.Company, lines []POLineForPDF) ([]byte, error)
}
