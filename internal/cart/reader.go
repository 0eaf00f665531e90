// Package cart reads a user's cart and materializes the immutable snapshot
// the orchestrator places an order from.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/craftkart/checkout/internal/aws"
)

var (
	// ErrEmptyCart indicates the cart is missing or has no line items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrProductUnavailable indicates a cart entry references a product that
	// no longer exists.
	ErrProductUnavailable = errors.New("product unavailable")
)

// LineItem is one snapshot line: the cart quantity plus the product's price
// captured at read time.
type LineItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
}

// Snapshot is the immutable view of the cart a single checkout operates on.
type Snapshot struct {
	Items []LineItem
	Total float64
}

type cartItem struct {
	ProductID string `dynamodbav:"product_id"`
	Quantity  int    `dynamodbav:"quantity"`
}

type cartDoc struct {
	UserID    string     `dynamodbav:"user_id"` // PK
	Items     []cartItem `dynamodbav:"items"`
	UpdatedAt time.Time  `dynamodbav:"updated_at"`
}

type productDoc struct {
	ProductID string  `dynamodbav:"product_id"` // PK
	Name      string  `dynamodbav:"name"`
	Price     float64 `dynamodbav:"price"`
	Stock     int     `dynamodbav:"stock"`
}

// Reader resolves carts against the products table.
type Reader struct {
	client        aws.DynamoDBAPI
	cartsTable    string
	productsTable string
	nowFunc       func() time.Time
}

// NewReader returns a Reader bound to the carts and products tables.
func NewReader(client aws.DynamoDBAPI, cartsTable, productsTable string) *Reader {
	return &Reader{
		client:        client,
		cartsTable:    cartsTable,
		productsTable: productsTable,
		nowFunc:       time.Now,
	}
}

// ReadAndValidate loads the user's cart and resolves every line to the
// product's current price. Read-only: no stock is touched here.
func (r *Reader) ReadAndValidate(ctx context.Context, userID string) (*Snapshot, error) {
	out, err := r.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &r.cartsTable,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrEmptyCart
	}

	var doc cartDoc
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, ErrEmptyCart
	}

	snap := &Snapshot{Items: make([]LineItem, 0, len(doc.Items))}
	for _, it := range doc.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("cart entry %s has quantity %d", it.ProductID, it.Quantity)
		}
		product, err := r.getProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		snap.Items = append(snap.Items, LineItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			Quantity:  it.Quantity,
			UnitPrice: product.Price,
		})
		snap.Total += float64(it.Quantity) * product.Price
	}
	return snap, nil
}

// Clear empties the cart's item list. The cart document itself survives.
func (r *Reader) Clear(ctx context.Context, userID string) error {
	now := r.nowFunc().UTC()
	_, err := r.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &r.cartsTable,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression: awsString("SET #items = :empty, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#items": "items",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":ua":    &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *Reader) getProduct(ctx context.Context, productID string) (*productDoc, error) {
	out, err := r.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &r.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
	}
	var p productDoc
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product %s: %w", productID, err)
	}
	return &p, nil
}

func awsString(s string) *string { return &s }
