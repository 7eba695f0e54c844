package ecs

import (
	"reflect"
	"slices"
)

// EntityID 是实体的唯一标识符，0 保留为无效 ID
type EntityID uint64

// EntityManager 管理实体和组件
//
// 组件按类型分列存储（类型 -> 实体 -> 组件）。查询从最小的一列开始过滤，
// 结果按 ID 升序返回，保证每个模拟步内的遍历顺序固定。
type EntityManager struct {
	nextID   EntityID
	entities map[EntityID]struct{}
	columns  map[reflect.Type]map[EntityID]any

	// pendingDestroy 延迟删除，避免在系统遍历中途修改实体集合
	pendingDestroy []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:   1,
		entities: make(map[EntityID]struct{}),
		columns:  make(map[reflect.Type]map[EntityID]any),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	id := em.nextID
	em.nextID++
	em.entities[id] = struct{}{}
	return id
}

// DestroyEntity 标记实体待删除，RemoveMarkedEntities 时才真正移除
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.pendingDestroy = append(em.pendingDestroy, id)
}

// RemoveMarkedEntities 移除所有标记删除的实体及其组件
func (em *EntityManager) RemoveMarkedEntities() {
	for _, id := range em.pendingDestroy {
		delete(em.entities, id)
		for _, column := range em.columns {
			delete(column, id)
		}
	}
	em.pendingDestroy = em.pendingDestroy[:0]
}

// Exists 实体是否存在（已标记删除但尚未清理的实体仍然存在）
func (em *EntityManager) Exists(id EntityID) bool {
	_, ok := em.entities[id]
	return ok
}

// EntityCount 当前实体数量
func (em *EntityManager) EntityCount() int {
	return len(em.entities)
}

// AddComponent 为实体添加组件，同类型组件会被替换；实体不存在时忽略
func (em *EntityManager) AddComponent(id EntityID, component any) {
	if !em.Exists(id) {
		return
	}
	t := reflect.TypeOf(component)
	column, ok := em.columns[t]
	if !ok {
		column = make(map[EntityID]any)
		em.columns[t] = column
	}
	column[id] = component
}

// RemoveComponent 移除实体的指定类型组件
func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	delete(em.columns[componentType], id)
}

// GetComponent 获取实体的指定类型组件
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (any, bool) {
	comp, ok := em.columns[componentType][id]
	return comp, ok
}

// HasComponent 实体是否拥有指定类型组件
func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	_, ok := em.columns[componentType][id]
	return ok
}

// GetEntitiesWith 查询同时拥有所有指定组件类型的实体
//
// 参数:
//   - componentTypes: 需要的组件类型；为空时返回所有实体
//
// 返回:
//   - []EntityID: 满足条件的实体ID（按 ID 升序）
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)

	if len(componentTypes) == 0 {
		for id := range em.entities {
			result = append(result, id)
		}
		slices.Sort(result)
		return result
	}

	// 从最小的一列开始
	smallest := em.columns[componentTypes[0]]
	for _, t := range componentTypes[1:] {
		if len(em.columns[t]) < len(smallest) {
			smallest = em.columns[t]
		}
	}

	for id := range smallest {
		hasAll := true
		for _, t := range componentTypes {
			if _, ok := em.columns[t][id]; !ok {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, id)
		}
	}

	slices.Sort(result)
	return result
}
