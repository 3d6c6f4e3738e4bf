package procurement

import (
	"context"
	"fmt"

	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// PDFUseCase genera el documento PDF de una orden de compra para enviar al proveedor.
// Las OCs en borrador también se pueden descargar (sirven como cotización).
type PDFUseCase struct {
	poRepo      repository.PurchaseOrderRepository
	companyRepo repository.CompanyRepository
	productRepo repository.ProductRepository
	generator   PurchaseOrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	poRepo repository.PurchaseOrderRepository,
	companyRepo repository.CompanyRepository,
	productRepo repository.ProductRepository,
	generator PurchaseOrderPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{poRepo: poRepo, companyRepo: companyRepo, productRepo: productRepo, generator: generator}
}

// DownloadPurchaseOrderPDF carga la OC, la empresa y los SKUs y genera el documento.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la OC no existe o es de otra empresa.
func (uc *PDFUseCase) DownloadPurchaseOrderPDF(ctx context.Context, companyID, poID string) (pdfBytes []byte, filename string, err error) {
	po, err := uc.poRepo.GetByID(ctx, poID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener OC: %w", err)
	}
	if po == nil || po.CompanyID != companyID {
		return nil, "", domain.ErrNotFound
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}

	lines := make([]POLineForPDF, 0, len(po.Items))
	for _, it := range po.Items {
		line := POLineForPDF{POItem: it, SKU: it.ProductID, ProductName: "Producto " + it.ProductID}
		if p, pErr := uc.productRepo.GetByID(ctx, it.ProductID); pErr == nil && p != nil {
			line.SKU = p.SKU
			line.ProductName = p.Name
			if p.Variant != "" {
				line.ProductName += " - " + p.Variant
			}
		}
		lines = append(lines, line)
	}

	pdfBytes, err = uc.generator.GeneratePurchaseOrderPDF(ctx, po, company, lines)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("orden_compra_%s.pdf", po.PONumber), nil
}
