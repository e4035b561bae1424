package proposal

import (
	"time"

	"github.com/homeops/backend/internal/domain/partner"
	"github.com/homeops/backend/internal/domain/plan"
)

// BuildDocument flattens a project and its client into the template data model.
// Sections appear in tree order, parents before children, each carrying the
// subtotal of its whole subtree.
func BuildDocument(p *plan.Project, client *partner.Client, company CompanyInfo) *Document {
	doc := &Document{
		Title:       "Installation Proposal - " + p.Name,
		Company:     company,
		ProjectName: p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		TotalCost:   p.TotalCost,
		GeneratedAt: time.Now(),
	}

	if client != nil {
		doc.Client = ClientInfo{
			Name:    client.Name,
			Email:   client.Email,
			Phone:   client.Phone,
			Address: client.Address,
		}
	} else {
		doc.Client = ClientInfo{Name: p.ClientName}
	}

	for _, root := range p.Locations {
		appendSections(doc, root)
	}

	return doc
}

func appendSections(doc *Document, loc *plan.Location) {
	section := Section{
		Name:        loc.Name,
		Description: loc.Description,
		Depth:       loc.Depth,
		Subtotal:    plan.SubtreeCost(loc),
	}
	for _, item := range loc.Items {
		section.Items = append(section.Items, LineRow{
			DeviceName: item.DeviceName,
			DeviceCode: item.DeviceCode,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Amount:     item.Amount,
		})
	}
	doc.Sections = append(doc.Sections, section)

	for _, child := range loc.Children {
		appendSections(doc, child)
	}
}
