// Package inventory owns per-product stock counts. Reservations are single
// conditional DynamoDB updates, so concurrent checkouts against the same
// product serialize on the document and stock can never go below zero.
package inventory

import (
	"context"
	"errors"
	"fmt"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/craftkart/checkout/internal/aws"
)

// ErrInsufficientStock indicates the product has fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// Ledger performs atomic stock mutations on the products table.
type Ledger struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewLedger returns a Ledger bound to the products table.
func NewLedger(client aws.DynamoDBAPI, tableName string) *Ledger {
	return &Ledger{
		client:    client,
		tableName: tableName,
	}
}

// Reserve decrements the product's stock by quantity, guarded by
// stock >= :qty. The guard is what rejects oversells: if two checkouts race
// for the last unit, exactly one conditional write succeeds.
func (l *Ledger) Reserve(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("reserve %s: quantity must be >= 1, got %d", productID, quantity)
	}

	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &l.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression:    awsString("SET stock = stock - :qty"),
		ConditionExpression: awsString("attribute_exists(product_id) AND stock >= :qty"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qty": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", quantity)},
		},
	})
	if err != nil {
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return fmt.Errorf("%w: product %s, requested %d", ErrInsufficientStock, productID, quantity)
		}
		return fmt.Errorf("reserve stock: %w", err)
	}
	return nil
}

// Release increments the product's stock by quantity. Releases are not
// bounded by a prior reservation record; compensation and cancellation both
// funnel through here.
func (l *Ledger) Release(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("release %s: quantity must be >= 1, got %d", productID, quantity)
	}

	_, err := l.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &l.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression: awsString("SET stock = if_not_exists(stock, :zero) + :qty"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":qty":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", quantity)},
		},
	})
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
