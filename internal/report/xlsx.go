package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/stats"
)

var categoryLabels = map[models.ItemCategory]string{
	models.CategorySoup:     "Sopas",
	models.CategoryFood:     "Comida",
	models.CategoryDessert:  "Sobremesas",
	models.CategoryDrink:    "Bebidas",
	models.CategoryAlcohol:  "Bebidas alcoólicas",
	models.CategoryGiveaway: "Ofertas",
}

// BuildEventReport monta o relatório imprimível do evento para a direção:
// uma folha de resumo financeiro e uma folha com o ranking de artigos.
func BuildEventReport(ev *models.Event, summary *stats.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	const resumo = "Resumo"
	if err := f.SetSheetName("Sheet1", resumo); err != nil {
		return nil, err
	}

	summaryRows := [][]interface{}{
		{"Evento", ev.Name},
		{"Período", fmt.Sprintf("%s a %s", ev.StartDate.Format("2006-01-02"), ev.EndDate.Format("2006-01-02"))},
		{},
		{"Total de encomendas", summary.TotalOrders},
		{"Confirmadas", summary.ConfirmedCount},
		{"Anuladas", summary.VoidCount},
		{},
		{"Receita sem IVA", summary.RevenueSubtotal.StringFixed(2)},
		{"IVA", summary.RevenueTax.StringFixed(2)},
		{"Receita total", summary.RevenueTotal.StringFixed(2)},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(resumo, cell, &row); err != nil {
			return nil, err
		}
	}

	const artigos = "Artigos"
	if _, err := f.NewSheet(artigos); err != nil {
		return nil, err
	}

	header := []interface{}{"Artigo", "Categoria", "Preço unitário", "Quantidade vendida", "Receita"}
	if err := f.SetSheetRow(artigos, "A1", &header); err != nil {
		return nil, err
	}
	for i, item := range summary.PopularItems {
		label, ok := categoryLabels[item.Category]
		if !ok {
			label = string(item.Category)
		}
		row := []interface{}{
			item.Name,
			label,
			item.UnitPrice.StringFixed(2),
			item.QuantitySold,
			item.RevenueContribution.StringFixed(2),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(artigos, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
