package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPCサービス名
const ServiceName = "financetracker.v1.TransactionService"

// メソッド名
const (
	MethodListTransactions  = "ListTransactions"
	MethodGetTransaction    = "GetTransaction"
	MethodCreateTransaction = "CreateTransaction"
	MethodUpdateTransaction = "UpdateTransaction"
	MethodDeleteTransaction = "DeleteTransaction"
	MethodGetSummary        = "GetSummary"
)

// TransactionServiceServer トランザクションサービスのサーバーインターフェース
// メッセージはREST APIと同じJSON形状をgoogle.protobuf.Structで表す
type TransactionServiceServer interface {
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(TransactionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// TransactionServiceDesc サービス定義
var TransactionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransactionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodListTransactions, Handler: unaryHandler(MethodListTransactions, TransactionServiceServer.ListTransactions)},
		{MethodName: MethodGetTransaction, Handler: unaryHandler(MethodGetTransaction, TransactionServiceServer.GetTransaction)},
		{MethodName: MethodCreateTransaction, Handler: unaryHandler(MethodCreateTransaction, TransactionServiceServer.CreateTransaction)},
		{MethodName: MethodUpdateTransaction, Handler: unaryHandler(MethodUpdateTransaction, TransactionServiceServer.UpdateTransaction)},
		{MethodName: MethodDeleteTransaction, Handler: unaryHandler(MethodDeleteTransaction, TransactionServiceServer.DeleteTransaction)},
		{MethodName: MethodGetSummary, Handler: unaryHandler(MethodGetSummary, TransactionServiceServer.GetSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "financetracker/v1/transaction_service.proto",
}

// RegisterTransactionServiceServer サービスを登録
func RegisterTransactionServiceServer(s grpc.ServiceRegistrar, srv TransactionServiceServer) {
	s.RegisterService(&TransactionServiceDesc, srv)
}

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TransactionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TransactionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
