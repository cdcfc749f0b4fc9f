package store

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/biey-root/serverless-rest-api/internal/domain"
)

// DynamoStore implements TodoStore against a DynamoDB table keyed by id.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) Create(ctx context.Context, fields CreateFields) (domain.Todo, error) {
	now := nowISO()
	todo := domain.Todo{
		ID:            newID(),
		Title:         fields.Title,
		DueDate:       fields.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
		OwnerSub:      fields.OwnerSub,
		OwnerUsername: fields.OwnerUsername,
	}

	item, err := attributevalue.MarshalMap(todo)
	if err != nil {
		return domain.Todo{}, upstream(err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return domain.Todo{}, ErrConflict
		}
		return domain.Todo{}, upstream(err)
	}
	return todo, nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (domain.Todo, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key(id),
	})
	if err != nil {
		return domain.Todo{}, upstream(err)
	}
	if len(out.Item) == 0 {
		return domain.Todo{}, ErrNotFound
	}
	var todo domain.Todo
	if err := attributevalue.UnmarshalMap(out.Item, &todo); err != nil {
		return domain.Todo{}, upstream(err)
	}
	return todo, nil
}

func (s *DynamoStore) Update(ctx context.Context, id string, patch Patch) (domain.Todo, error) {
	if patch.IsEmpty() {
		return domain.Todo{}, ErrNoMutableFields
	}

	update := expression.Set(expression.Name("updatedAt"), expression.Value(nowISO()))
	if patch.Title != nil {
		update = update.Set(expression.Name("title"), expression.Value(*patch.Title))
	}
	if patch.DueDateSet {
		update = update.Set(expression.Name("dueDate"), expression.Value(patch.DueDate))
	}
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return domain.Todo{}, upstream(err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return domain.Todo{}, ErrNotFound
		}
		return domain.Todo{}, upstream(err)
	}
	var todo domain.Todo
	if err := attributevalue.UnmarshalMap(out.Attributes, &todo); err != nil {
		return domain.Todo{}, upstream(err)
	}
	return todo, nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		return upstream(err)
	}
	return nil
}

// List performs a bounded full-table scan. The store has no secondary
// ordering guarantee; ordering across pages under concurrent mutation is an
// accepted weak-consistency tradeoff.
func (s *DynamoStore) List(ctx context.Context, limit int32, cursor string) (Page, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		input.ExclusiveStartKey = key(cursor)
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return Page{}, upstream(err)
	}

	var items []domain.Todo
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return Page{}, upstream(err)
	}
	if items == nil {
		items = []domain.Todo{}
	}

	page := Page{Items: items}
	if lek, ok := out.LastEvaluatedKey["id"]; ok {
		if v, ok := lek.(*types.AttributeValueMemberS); ok {
			page.NextCursor = aws.String(v.Value)
		}
	}
	return page, nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func upstream(err error) *UpstreamError {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage(), Err: err}
	}
	return &UpstreamError{Code: "Unknown", Message: err.Error(), Err: err}
}
