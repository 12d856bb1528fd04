// vector.go

package models

import "math"

// Vector2D 二维向量
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add 向量相加
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 向量相减
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale 向量缩放
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Length 向量长度
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalized 归一化向量，零向量返回零向量
func (v Vector2D) Normalized() Vector2D {
	l := v.Length()
	if l == 0 {
		return Vector2D{}
	}
	return Vector2D{X: v.X / l, Y: v.Y / l}
}

// ClampMagnitude 将向量长度限制在max以内
func (v Vector2D) ClampMagnitude(max float64) Vector2D {
	l := v.Length()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// Dot 向量点积
func (v Vector2D) Dot(o Vector2D) float64 {
	return v.X*o.X + v.Y*o.Y
}

// DistanceTo 两点距离
func (v Vector2D) DistanceTo(o Vector2D) float64 {
	return v.Sub(o).Length()
}
