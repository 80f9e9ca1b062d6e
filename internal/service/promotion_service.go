package service

import (
	"fmt"
	"time"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/models"
	"github.com/resys-shop/core/internal/repository"

	"github.com/shopspring/decimal"
)

// PromotionService 促销规则求值与调整项计算
type PromotionService struct {
	promotionRepo repository.PromotionRepository
	catalogRepo   repository.CatalogRepository
	orderRepo     repository.OrderRepository
}

// NewPromotionService 创建促销服务
func NewPromotionService(promotionRepo repository.PromotionRepository, catalogRepo repository.CatalogRepository, orderRepo repository.OrderRepository) *PromotionService {
	return &PromotionService{
		promotionRepo: promotionRepo,
		catalogRepo:   catalogRepo,
		orderRepo:     orderRepo,
	}
}

// Active 判断促销当前是否可用（启用且在有效期内）
func (s *PromotionService) Active(promotion *models.Promotion, now time.Time) bool {
	if promotion == nil || !promotion.IsActive {
		return false
	}
	if promotion.StartsAt != nil && now.Before(*promotion.StartsAt) {
		return false
	}
	if promotion.EndsAt != nil && now.After(*promotion.EndsAt) {
		return false
	}
	return true
}

// Evaluate 对单条规则求值（按类型分派，无副作用）
func (s *PromotionService) Evaluate(rule models.PromotionRule, order *models.Order) (bool, error) {
	switch rule.Type {
	case constants.PromotionRuleFirstOrder:
		return s.evaluateFirstOrder(order)
	case constants.PromotionRuleProductInclude:
		found, err := s.orderContainsProduct(order, uint(rule.Value))
		return found, err
	case constants.PromotionRuleProductExclude:
		found, err := s.orderContainsProduct(order, uint(rule.Value))
		return !found, err
	case constants.PromotionRuleCategoryInclude:
		found, err := s.orderContainsTaxon(order, rule.Taxons)
		return found, err
	case constants.PromotionRuleCategoryExclude:
		found, err := s.orderContainsTaxon(order, rule.Taxons)
		return !found, err
	case constants.PromotionRuleMinimumQuantity:
		return int64(order.TotalQuantity()) >= rule.Value, nil
	case constants.PromotionRuleUserRole:
		if order.CustomerID == nil {
			return false, nil
		}
		for _, u := range rule.Users {
			if u.UserID == *order.CustomerID {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrPromotionRuleUnknown, rule.Type)
	}
}

// Eligible 规则全部命中才生效；无规则的促销恒为可用
func (s *PromotionService) Eligible(promotion *models.Promotion, order *models.Order) (bool, error) {
	for _, rule := range promotion.Rules {
		ok, err := s.Evaluate(rule, order)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Calculate 按促销动作计算调整项集合（纯函数，相同订单状态下结果恒等）
func (s *PromotionService) Calculate(promotion *models.Promotion, order *models.Order) ([]models.Adjustment, error) {
	if len(order.LineItems) == 0 {
		return nil, ErrPromotionNotEligible
	}
	promotionID := promotion.ID
	switch promotion.ActionType {
	case constants.PromotionActionPercent:
		percent := decimal.NewFromInt(promotion.ActionValue)
		amount := order.ItemTotal.Percent(percent)
		if amount <= 0 {
			return nil, ErrPromotionNotEligible
		}
		return []models.Adjustment{{
			OrderID:  order.ID,
			Source:   constants.AdjustmentSourcePromotion,
			SourceID: &promotionID,
			Amount:   amount.Neg(),
			Label:    promotion.Name,
			Eligible: true,
		}}, nil
	case constants.PromotionActionFixed:
		amount := models.Money(promotion.ActionValue)
		if amount <= 0 {
			return nil, ErrPromotionNotEligible
		}
		if amount > order.ItemTotal {
			amount = order.ItemTotal
		}
		return []models.Adjustment{{
			OrderID:  order.ID,
			Source:   constants.AdjustmentSourcePromotion,
			SourceID: &promotionID,
			Amount:   amount.Neg(),
			Label:    promotion.Name,
			Eligible: true,
		}}, nil
	case constants.PromotionActionFreeShipping:
		return []models.Adjustment{{
			OrderID:  order.ID,
			Source:   constants.AdjustmentSourcePromotion,
			SourceID: &promotionID,
			Amount:   order.ShipmentTotal.Neg(),
			Label:    promotion.Name,
			Eligible: true,
		}}, nil
	case constants.PromotionActionPerLineFixed:
		perLine := models.Money(promotion.ActionValue)
		if perLine <= 0 {
			return nil, ErrPromotionNotEligible
		}
		adjustments := make([]models.Adjustment, 0, len(order.LineItems))
		for i := range order.LineItems {
			item := &order.LineItems[i]
			amount := perLine
			if amount > item.Total() {
				amount = item.Total()
			}
			lineItemID := item.ID
			adjustments = append(adjustments, models.Adjustment{
				OrderID:    order.ID,
				LineItemID: &lineItemID,
				Source:     constants.AdjustmentSourcePromotion,
				SourceID:   &promotionID,
				Amount:     amount.Neg(),
				Label:      promotion.Name,
				Eligible:   true,
			})
		}
		return adjustments, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrPromotionActionUnknown, promotion.ActionType)
	}
}

func (s *PromotionService) evaluateFirstOrder(order *models.Order) (bool, error) {
	if order.CustomerID == nil {
		return true, nil
	}
	count, err := s.orderRepo.CountCompletedByCustomer(*order.CustomerID, order.ID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *PromotionService) orderContainsProduct(order *models.Order, productID uint) (bool, error) {
	for i := range order.LineItems {
		variant, err := s.catalogRepo.GetVariant(order.LineItems[i].VariantID)
		if err != nil {
			return false, err
		}
		if variant != nil && variant.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *PromotionService) orderContainsTaxon(order *models.Order, taxons []models.PromotionRuleTaxon) (bool, error) {
	if len(taxons) == 0 {
		return false, nil
	}
	wanted := make(map[uint]struct{}, len(taxons))
	for _, t := range taxons {
		wanted[t.TaxonID] = struct{}{}
	}
	for i := range order.LineItems {
		variant, err := s.catalogRepo.GetVariant(order.LineItems[i].VariantID)
		if err != nil {
			return false, err
		}
		if variant == nil {
			continue
		}
		taxonIDs, err := s.catalogRepo.ListTaxonIDsByProduct(variant.ProductID)
		if err != nil {
			return false, err
		}
		for _, id := range taxonIDs {
			if _, ok := wanted[id]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}
