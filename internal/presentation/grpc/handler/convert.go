package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"finance-tracker/internal/domain/identity"
	"finance-tracker/internal/domain/transaction"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// stringField リクエストのフィールドを文字列として取得（数値は整数表記に変換）
func stringField(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
	case *structpb.Value_NullValue:
		return ""
	default:
		// 型が合わない値は検証で弾かれる形にする
		return fmt.Sprintf("%v", v.AsInterface())
	}
}

// transactionInput transactionフィールドをTransactionInputに変換
func transactionInput(req *structpb.Struct) (transaction.TransactionInput, error) {
	body := req.GetFields()["transaction"].GetStructValue()
	if body == nil {
		return transaction.TransactionInput{}, transaction.Invalid("transaction must be an object")
	}
	data, err := protojson.Marshal(body)
	if err != nil {
		return transaction.TransactionInput{}, transaction.Invalid("transaction is not valid JSON")
	}
	return transaction.DecodeTransactionInput(data)
}

// toStruct JSONにエンコード可能な値をStructに変換
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to convert response: %w", err)
	}
	return out, nil
}

// handleError ドメインエラーをgRPCステータスに変換
// ストア由来の詳細はクライアントに返さない
func handleError(err error) error {
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, transaction.ErrInvalidTransaction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, transaction.ErrTransactionNotFound):
		return status.Error(codes.NotFound, "transaction not found")
	default:
		return status.Error(codes.Internal, "an unexpected error occurred")
	}
}
