package gateway

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/samber/lo"

	"github.com/k-negishi/whatsapp-events-bot/internal/domain"
)

// DynamoDBAPI リポジトリが利用するDynamoDBクライアントの操作
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// eventItem DynamoDBテーブルのアイテム構造体
type eventItem struct {
	ID          string `dynamodbav:"id"`
	Name        string `dynamodbav:"name"`
	Date        string `dynamodbav:"date"`
	Address     string `dynamodbav:"address"`
	Description string `dynamodbav:"description"`
	UserPhone   string `dynamodbav:"user_phone"`
	ImageURL    string `dynamodbav:"image_url,omitempty"`
}

// DynamoDBEventRepository DynamoDBを使用したEventRepositoryの実装
type DynamoDBEventRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewDynamoDBEventRepository イベントリポジトリを作成
func NewDynamoDBEventRepository(client DynamoDBAPI, tableName string) *DynamoDBEventRepository {
	return &DynamoDBEventRepository{
		client:    client,
		tableName: tableName,
	}
}

// Get IDでイベントを取得。存在しない場合は domain.ErrEventNotFound
func (r *DynamoDBEventRepository) Get(ctx context.Context, id string) (*domain.Event, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("イベント %s の取得に失敗しました: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrEventNotFound
	}

	var item eventItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("イベント %s の変換に失敗しました: %w", id, err)
	}
	event := toEvent(item)
	return &event, nil
}

// Put イベントを保存
func (r *DynamoDBEventRepository) Put(ctx context.Context, event domain.Event) error {
	av, err := attributevalue.MarshalMap(toItem(event))
	if err != nil {
		return fmt.Errorf("イベントの変換に失敗しました: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("イベント %s の保存に失敗しました: %w", event.ID, err)
	}
	return nil
}

// Delete IDでイベントを削除
func (r *DynamoDBEventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       idKey(id),
	}); err != nil {
		return fmt.Errorf("イベント %s の削除に失敗しました: %w", id, err)
	}
	return nil
}

// FindByOwner ユーザーが作成したイベントを取得。順序はスキャン結果のまま
func (r *DynamoDBEventRepository) FindByOwner(ctx context.Context, userPhone string) ([]domain.Event, error) {
	return r.scan(ctx, expression.Name("user_phone").Equal(expression.Value(userPhone)))
}

// FindByOwnerAndName ユーザーが作成した同名のイベントを取得 (大文字小文字を区別した完全一致)
func (r *DynamoDBEventRepository) FindByOwnerAndName(ctx context.Context, userPhone, name string) ([]domain.Event, error) {
	return r.scan(ctx, expression.Name("user_phone").Equal(expression.Value(userPhone)).
		And(expression.Name("name").Equal(expression.Value(name))))
}

// scan フィルター条件でテーブル全体をスキャンする。全ページを読み切る
func (r *DynamoDBEventRepository) scan(ctx context.Context, filter expression.ConditionBuilder) ([]domain.Event, error) {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("スキャン条件の構築に失敗しました: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	events := make([]domain.Event, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("イベントのスキャンに失敗しました: %w", err)
		}

		var items []eventItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("スキャン結果の変換に失敗しました: %w", err)
		}
		events = append(events, lo.Map(items, func(item eventItem, _ int) domain.Event {
			return toEvent(item)
		})...)
	}

	return events, nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func toItem(event domain.Event) eventItem {
	return eventItem{
		ID:          event.ID,
		Name:        event.Name,
		Date:        event.Date,
		Address:     event.Address,
		Description: event.Description,
		UserPhone:   event.UserPhone,
		ImageURL:    event.ImageURL,
	}
}

func toEvent(item eventItem) domain.Event {
	return domain.Event{
		ID:          item.ID,
		Name:        item.Name,
		Date:        item.Date,
		Address:     item.Address,
		Description: item.Description,
		UserPhone:   item.UserPhone,
		ImageURL:    item.ImageURL,
	}
}
