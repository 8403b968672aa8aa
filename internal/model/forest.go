package model

import (
	"fmt"
	"math"
)

const leafChild = -1

type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"` // 叶子节点各类别的权重
}

func (n *TreeNode) IsLeaf() bool {
	return n.Left == leafChild
}

type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

type forest struct {
	numFeature int
	classes    []int
	trees      []*Tree
	// 每棵树每个叶子节点归一化后的概率分布，非叶子节点为nil
	leafProba [][][]float64
}

var _ Classifier = &forest{}

func newForest(file *classifierFile) (*forest, error) {
	if file.NumFeature <= 0 {
		return nil, fmt.Errorf("n_features应当大于0，现在为%d", file.NumFeature)
	}
	if file.NumClass <= 0 {
		return nil, fmt.Errorf("n_classes应当大于0，现在为%d", file.NumClass)
	}
	if len(file.Trees) == 0 {
		return nil, fmt.Errorf("分类器中没有树")
	}

	classes := file.Classes
	if len(classes) == 0 {
		// 标签经过LabelEncoder编码，类别值即为下标
		classes = make([]int, file.NumClass)
		for i := range classes {
			classes[i] = i
		}
	}
	if len(classes) != file.NumClass {
		return nil, fmt.Errorf("classes长度为%d，与n_classes=%d不一致", len(classes), file.NumClass)
	}

	f := &forest{
		numFeature: file.NumFeature,
		classes:    classes,
		trees:      file.Trees,
		leafProba:  make([][][]float64, len(file.Trees)),
	}
	for ti, tree := range file.Trees {
		proba, err := checkTree(tree, file.NumFeature, file.NumClass)
		if err != nil {
			return nil, fmt.Errorf("第%d棵树有误：%v", ti, err)
		}
		f.leafProba[ti] = proba
	}
	return f, nil
}

// 检查树结构，并计算各叶子节点的概率分布。子节点下标必须大于父节点，保证遍历能够结束
func checkTree(tree *Tree, numFeature, numClass int) ([][]float64, error) {
	if tree == nil || len(tree.Nodes) == 0 {
		return nil, fmt.Errorf("树没有节点")
	}

	proba := make([][]float64, len(tree.Nodes))
	for i := range tree.Nodes {
		node := &tree.Nodes[i]
		if node.IsLeaf() {
			if len(node.Value) != numClass {
				return nil, fmt.Errorf("第%d个节点的value长度为%d，应为%d", i, len(node.Value), numClass)
			}
			sum := 0.0
			for _, v := range node.Value {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("第%d个节点的value含有非法值%v", i, v)
				}
				sum += v
			}
			if sum == 0 {
				return nil, fmt.Errorf("第%d个节点的value全为0", i)
			}
			p := make([]float64, numClass)
			for c, v := range node.Value {
				p[c] = v / sum
			}
			proba[i] = p
			continue
		}

		if node.Feature < 0 || node.Feature >= numFeature {
			return nil, fmt.Errorf("第%d个节点的特征下标%d超出范围", i, node.Feature)
		}
		if node.Left <= i || node.Left >= len(tree.Nodes) || node.Right <= i || node.Right >= len(tree.Nodes) {
			return nil, fmt.Errorf("第%d个节点的子节点下标有误，left=%d，right=%d", i, node.Left, node.Right)
		}
	}
	return proba, nil
}

func (f *forest) NumFeatures() int {
	return f.numFeature
}

func (f *forest) Classes() []int {
	return f.classes
}

func (f *forest) NumEstimators() int {
	return len(f.trees)
}

func (f *forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.numFeature {
		return nil, fmt.Errorf("特征数量为%d，模型需要%d个", len(x), f.numFeature)
	}

	result := make([]float64, len(f.classes))
	for ti, tree := range f.trees {
		leaf := tree.apply(x)
		for c, p := range f.leafProba[ti][leaf] {
			result[c] += p
		}
	}
	for c := range result {
		result[c] /= float64(len(f.trees))
	}
	return result, nil
}

func (f *forest) Predict(x []float64) (int, float64, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, 0, err
	}

	// 相等时取第一个
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	// 浮点误差可能使概率略大于1
	return f.classes[best], math.Min(proba[best], 1), nil
}

// 返回x落入的叶子节点下标
func (t *Tree) apply(x []float64) int {
	idx := 0
	for !t.Nodes[idx].IsLeaf() {
		node := &t.Nodes[idx]
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return idx
}
